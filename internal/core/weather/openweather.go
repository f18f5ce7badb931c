// Package weather wraps the OpenWeatherMap 5-day/3-hour forecast endpoint
// and reshapes its samples into one summary per calendar day.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/agritunisie/connect/internal/apperr"
	"github.com/agritunisie/connect/internal/models"
)

// EchantillonHeure is one preserved 3-hour sample of a daily summary.
type EchantillonHeure struct {
	Time        string  `json:"time"`
	Temp        float64 `json:"temp"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

// Jour is one daily forecast entry exposed by the API.
type Jour struct {
	models.MeteoJour
	Details []EchantillonHeure `json:"details"`
}

// Previsions is the full forecast response.
type Previsions struct {
	Message   string  `json:"message"`
	Simule    bool    `json:"simule,omitempty"`
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Units     string  `json:"units"`
	Forecast  []Jour  `json:"forecast"`
}

// Client calls OpenWeatherMap. With an empty API key every lookup returns a
// labeled simulated payload instead of failing.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.openweathermap.org/data/2.5"
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		// External calls are bounded so a stuck provider cannot pin requests.
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Configured() bool { return c.apiKey != "" }

// owmForecast mirrors the provider payload fields we consume.
type owmForecast struct {
	List []struct {
		DtTxt string `json:"dt_txt"`
		Main  struct {
			Temp     float64 `json:"temp"`
			TempMin  float64 `json:"temp_min"`
			TempMax  float64 `json:"temp_max"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Rain struct {
			ThreeH float64 `json:"3h"`
		} `json:"rain"`
	} `json:"list"`
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"city"`
}

// GetPrevisions fetches and aggregates the forecast. Provider auth failures
// surface as 401, any other failure as 503.
func (c *Client) GetPrevisions(ctx context.Context, latitude, longitude float64, units string) (*Previsions, error) {
	if units == "" {
		units = "metric"
	}
	if !c.Configured() {
		return simulatedPrevisions(latitude, longitude, units), nil
	}

	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%g", latitude))
	q.Set("lon", fmt.Sprintf("%g", longitude))
	q.Set("units", units)
	q.Set("lang", "fr")
	q.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/forecast?"+q.Encode(), nil)
	if err != nil {
		return nil, apperr.Upstream("Service météo temporairement indisponible.", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.Upstream("Service météo temporairement indisponible.", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, apperr.Unauthorized("Clé API OpenWeatherMap invalide ou non autorisée.")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Upstream("Service météo temporairement indisponible.",
			fmt.Errorf("openweathermap status %d", resp.StatusCode))
	}

	var payload owmForecast
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperr.Upstream("Service météo temporairement indisponible.", err)
	}

	return &Previsions{
		Message:   "Prévisions météo récupérées avec succès.",
		City:      payload.City.Name,
		Country:   payload.City.Country,
		Latitude:  latitude,
		Longitude: longitude,
		Units:     units,
		Forecast:  aggregateDaily(payload),
	}, nil
}

// aggregateDaily buckets 3-hour samples per calendar day: running min/max
// temperatures, the middle sample's description and icon, averaged humidity
// and wind, summed precipitation. At most the first 5 days are kept.
func aggregateDaily(payload owmForecast) []Jour {
	type bucket struct {
		jour        Jour
		humiditeSum float64
		ventSum     float64
	}
	var order []string
	buckets := map[string]*bucket{}

	for _, item := range payload.List {
		if len(item.DtTxt) < 10 {
			continue
		}
		date := item.DtTxt[:10]
		heure := ""
		if len(item.DtTxt) > 11 {
			heure = item.DtTxt[11:]
		}
		desc, icon := "", ""
		if len(item.Weather) > 0 {
			desc = item.Weather[0].Description
			icon = item.Weather[0].Icon
		}

		b, ok := buckets[date]
		if !ok {
			b = &bucket{jour: Jour{MeteoJour: models.MeteoJour{
				Date:    date,
				TempMin: item.Main.TempMin,
				TempMax: item.Main.TempMax,
			}}}
			buckets[date] = b
			order = append(order, date)
		}
		if item.Main.TempMin < b.jour.TempMin {
			b.jour.TempMin = item.Main.TempMin
		}
		if item.Main.TempMax > b.jour.TempMax {
			b.jour.TempMax = item.Main.TempMax
		}
		b.jour.PrecipitationsMm += item.Rain.ThreeH
		b.humiditeSum += item.Main.Humidity
		b.ventSum += item.Wind.Speed
		b.jour.Details = append(b.jour.Details, EchantillonHeure{
			Time:        heure,
			Temp:        item.Main.Temp,
			Description: desc,
			Icon:        icon,
		})
	}

	var out []Jour
	for _, date := range order {
		b := buckets[date]
		n := len(b.jour.Details)
		if n == 0 {
			continue
		}
		mid := b.jour.Details[n/2]
		b.jour.Description = mid.Description
		b.jour.Icone = mid.Icon
		b.jour.Humidite = b.humiditeSum / float64(n)
		b.jour.VitesseVent = b.ventSum / float64(n)
		out = append(out, b.jour)
		if len(out) == 5 {
			break
		}
	}
	return out
}

func simulatedPrevisions(latitude, longitude float64, units string) *Previsions {
	jour := time.Now().Format("2006-01-02")
	return &Previsions{
		Message:   "Prévisions météo simulées (Clé API manquante)",
		Simule:    true,
		Latitude:  latitude,
		Longitude: longitude,
		Units:     units,
		Forecast: []Jour{{
			MeteoJour: models.MeteoJour{
				Date:        jour,
				TempMin:     10,
				TempMax:     20,
				Description: "Simulation",
				Icone:       "01d",
			},
		}},
	}
}
