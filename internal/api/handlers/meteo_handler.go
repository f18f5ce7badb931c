package handlers

import (
	"net/http"
	"strconv"

	"github.com/agritunisie/connect/internal/api/httpjson"
	"github.com/agritunisie/connect/internal/apperr"
	"github.com/agritunisie/connect/internal/services"
	"github.com/agritunisie/connect/internal/validate"
)

type MeteoHandler struct {
	rp  *httpjson.Responder
	svc *services.MeteoService
}

func NewMeteoHandler(rp *httpjson.Responder, svc *services.MeteoService) *MeteoHandler {
	return &MeteoHandler{rp: rp, svc: svc}
}

type previsionsQuery struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Units     string  `json:"units" validate:"omitempty,oneof=metric imperial standard"`
}

func (h *MeteoHandler) Previsions(w http.ResponseWriter, r *http.Request) {
	q, fields := coordsFrom(r)
	q.Units = r.URL.Query().Get("units")
	fields = append(fields, validate.Struct(q)...)
	if len(fields) > 0 {
		h.rp.Error(w, r, validate.Failed(fields))
		return
	}
	if q.Units == "" {
		q.Units = "metric"
	}

	previsions, err := h.svc.GetPrevisions(r.Context(), q.Latitude, q.Longitude, q.Units)
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	h.rp.JSON(w, http.StatusOK, previsions)
}

type historiqueQuery struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	DateStart string  `json:"dateStart" validate:"required,datetime=2006-01-02"`
	DateEnd   string  `json:"dateEnd" validate:"required,datetime=2006-01-02"`
}

func (h *MeteoHandler) Historique(w http.ResponseWriter, r *http.Request) {
	pq, fields := coordsFrom(r)
	q := historiqueQuery{
		Latitude:  pq.Latitude,
		Longitude: pq.Longitude,
		DateStart: r.URL.Query().Get("dateStart"),
		DateEnd:   r.URL.Query().Get("dateEnd"),
	}
	fields = append(fields, validate.Struct(q)...)
	if len(fields) == 0 && q.DateEnd < q.DateStart {
		fields = append(fields, apperr.FieldError{
			Field:   "dateEnd",
			Message: "La date de fin doit être postérieure ou égale à la date de début.",
		})
	}
	if len(fields) > 0 {
		h.rp.Error(w, r, validate.Failed(fields))
		return
	}

	historique, err := h.svc.GetHistorique(r.Context(), q.Latitude, q.Longitude, q.DateStart, q.DateEnd)
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}
	h.rp.JSON(w, http.StatusOK, historique)
}

// coordsFrom parses the latitude/longitude query parameters; missing or
// non-numeric values are reported as field errors before range checks run.
func coordsFrom(r *http.Request) (previsionsQuery, []apperr.FieldError) {
	var q previsionsQuery
	var fields []apperr.FieldError

	lat, err := strconv.ParseFloat(r.URL.Query().Get("latitude"), 64)
	if err != nil {
		fields = append(fields, apperr.FieldError{Field: "latitude", Message: "La latitude doit être un nombre entre -90 et 90."})
	}
	lon, err := strconv.ParseFloat(r.URL.Query().Get("longitude"), 64)
	if err != nil {
		fields = append(fields, apperr.FieldError{Field: "longitude", Message: "La longitude doit être un nombre entre -180 et 180."})
	}
	q.Latitude, q.Longitude = lat, lon
	return q, fields
}
