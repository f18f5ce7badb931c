// Package validate wraps go-playground/validator for the API's field-level
// rules. All violations of a request are collected, never short-circuited,
// and returned as one 422 payload.
package validate

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/agritunisie/connect/internal/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields under their wire (json) names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Struct runs the tag rules of v and returns every violation, or nil.
func Struct(v any) []apperr.FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []apperr.FieldError{{Field: "_", Message: err.Error()}}
	}
	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperr.FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return fields
}

// Failed wraps collected field errors in the standard 422 error.
func Failed(fields []apperr.FieldError) *apperr.Error {
	return apperr.Validation("Erreurs de validation.", fields...)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Le champ %s est requis.", fe.Field())
	case "email":
		return "L'adresse email est invalide."
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Le champ %s doit contenir au moins %s caractères.", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("Le champ %s doit être au moins %s.", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Le champ %s ne doit pas dépasser %s caractères.", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("Le champ %s ne doit pas dépasser %s.", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("Le champ %s doit être supérieur à %s.", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("Le champ %s doit être supérieur ou égal à %s.", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("Le champ %s doit être inférieur ou égal à %s.", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("Le champ %s doit être parmi: %s.", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("Le champ %s doit être au format YYYY-MM-DD.", fe.Field())
	case "dive":
		return fmt.Sprintf("Le champ %s contient des éléments invalides.", fe.Field())
	default:
		return fmt.Sprintf("Le champ %s est invalide (%s).", fe.Field(), fe.Tag())
	}
}

type geoJSONGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// CheckGeoJSON performs the structural check on a geometry document: the type
// must be Polygon or MultiPolygon, each ring needs at least 4 positions of
// two numbers, and every ring must be closed (first point == last point).
func CheckGeoJSON(raw json.RawMessage) error {
	var g geoJSONGeometry
	if err := json.Unmarshal(raw, &g); err != nil {
		return fmt.Errorf("la géométrie doit être un objet GeoJSON")
	}
	if g.Type == "" || len(g.Coordinates) == 0 {
		return fmt.Errorf("l'objet GeoJSON doit avoir les propriétés \"type\" et \"coordinates\"")
	}
	switch g.Type {
	case "Polygon":
		var rings [][][]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return fmt.Errorf("chaque coordonnée doit être un tableau de deux nombres [longitude, latitude]")
		}
		return checkRings(rings)
	case "MultiPolygon":
		var polys [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &polys); err != nil {
			return fmt.Errorf("chaque coordonnée doit être un tableau de deux nombres [longitude, latitude]")
		}
		if len(polys) == 0 {
			return fmt.Errorf("les coordonnées du MultiPolygon ne peuvent pas être vides")
		}
		for _, rings := range polys {
			if err := checkRings(rings); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("le type de géométrie doit être Polygon ou MultiPolygon")
	}
}

func checkRings(rings [][][]float64) error {
	if len(rings) == 0 {
		return fmt.Errorf("les coordonnées du Polygon doivent être un tableau de rings")
	}
	for _, ring := range rings {
		if len(ring) < 4 {
			return fmt.Errorf("chaque ring du Polygon doit être un tableau d'au moins 4 coordonnées")
		}
		for _, pos := range ring {
			if len(pos) < 2 {
				return fmt.Errorf("chaque coordonnée doit être un tableau de deux nombres [longitude, latitude]")
			}
		}
		first, last := ring[0], ring[len(ring)-1]
		if first[0] != last[0] || first[1] != last[1] {
			return fmt.Errorf("le premier et le dernier point de chaque ring doivent être identiques")
		}
	}
	return nil
}

// Pagination reads page/limit query parameters with the API's bounds:
// page >= 1, 1 <= limit <= 100. Out-of-range values are clamped.
func Pagination(r *http.Request, defaultLimit int) (page, limit int) {
	page, limit = 1, defaultLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v >= 1 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v >= 1 {
		limit = v
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// IDParam parses a positive integer path parameter, failing with the
// standard 422 payload otherwise.
func IDParam(raw, field string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, Failed([]apperr.FieldError{{
			Field:   field,
			Message: fmt.Sprintf("L'ID %s doit être un entier positif.", field),
		}})
	}
	return id, nil
}
