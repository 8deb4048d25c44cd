package memory

import "github.com/jhoicas/retail-ops-api/internal/domain/entity"

func cloneStamp(s *entity.TransferStamp) *entity.TransferStamp {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

func cloneItem(i *entity.StockItem) *entity.StockItem {
	if i == nil {
		return nil
	}
	cp := *i
	cp.LastTransferIn = cloneStamp(i.LastTransferIn)
	cp.LastTransferOut = cloneStamp(i.LastTransferOut)
	return &cp
}

func clonePrincipal(p *entity.Principal) *entity.Principal {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func cloneRequest(r *entity.StockRequest) *entity.StockRequest {
	if r == nil {
		return nil
	}
	cp := *r
	cp.ApprovedBy = clonePrincipal(r.ApprovedBy)
	cp.RejectedBy = clonePrincipal(r.RejectedBy)
	if r.ApprovedAt != nil {
		t := *r.ApprovedAt
		cp.ApprovedAt = &t
	}
	if r.RejectedAt != nil {
		t := *r.RejectedAt
		cp.RejectedAt = &t
	}
	if r.FailedAt != nil {
		t := *r.FailedAt
		cp.FailedAt = &t
	}
	return &cp
}

func cloneSettings(s *entity.ApprovalSettings) *entity.ApprovalSettings {
	cp := *s
	cp.AllowedLocations = append([]string(nil), s.AllowedLocations...)
	return &cp
}

// paginate aplica offset/limit; limit <= 0 devuelve todo desde offset.
func paginate[T any](list []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return list[:0]
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
