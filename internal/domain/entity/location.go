package entity

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Ubicaciones (sucursales) fijas de la operación.
const (
	LocationLilongwe = "Lilongwe"
	LocationBlantyre = "Blantyre"
	LocationMzuzu    = "Mzuzu"
	LocationZomba    = "Zomba"
)

// DefaultLocations conjunto de ubicaciones usado cuando la empresa no configuró uno propio.
var DefaultLocations = []string{LocationLilongwe, LocationBlantyre, LocationMzuzu, LocationZomba}

// NormalizeLocation devuelve el nombre canónico de una ubicación ("  blantyre " -> "Blantyre").
// El Caser de x/text no es seguro entre goroutines, por eso se crea en cada llamada.
func NormalizeLocation(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	return cases.Title(language.English).String(name)
}

// IsAllowedLocation indica si name pertenece al conjunto allowed (o a DefaultLocations si allowed está vacío).
func IsAllowedLocation(name string, allowed []string) bool {
	if len(allowed) == 0 {
		allowed = DefaultLocations
	}
	n := NormalizeLocation(name)
	if n == "" {
		return false
	}
	for _, a := range allowed {
		if NormalizeLocation(a) == n {
			return true
		}
	}
	return false
}
