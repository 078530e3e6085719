package provider

import (
	"strings"

	"github.com/pders01/nearby/internal/storage"
)

type searchResponse struct {
	Results []placeDTO `json:"results"`
}

type placeDTO struct {
	ID         string        `json:"fsq_id"`
	Name       string        `json:"name"`
	Categories []categoryDTO `json:"categories"`
	Location   struct {
		FormattedAddress string `json:"formatted_address"`
		Address          string `json:"address"`
		Locality         string `json:"locality"`
	} `json:"location"`
	Geocodes struct {
		Main struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"main"`
	} `json:"geocodes"`
	Distance    int     `json:"distance"`
	Website     string  `json:"website"`
	Tel         string  `json:"tel"`
	Rating      float64 `json:"rating"`
	Description string  `json:"description"`
}

type categoryDTO struct {
	Name string `json:"name"`
}

func (d placeDTO) toPlace() *storage.Place {
	p := &storage.Place{
		ID:       d.ID,
		Name:     strings.TrimSpace(d.Name),
		Address:  d.Location.FormattedAddress,
		Lat:      d.Geocodes.Main.Latitude,
		Lon:      d.Geocodes.Main.Longitude,
		Distance: d.Distance,
		Website:  d.Website,
		Phone:    d.Tel,
		Rating:   d.Rating,
		Notes:    strings.TrimSpace(d.Description),
	}
	if len(d.Categories) > 0 {
		p.Category = d.Categories[0].Name
	}
	if p.Address == "" {
		parts := []string{}
		for _, s := range []string{d.Location.Address, d.Location.Locality} {
			if s != "" {
				parts = append(parts, s)
			}
		}
		p.Address = strings.Join(parts, ", ")
	}
	return p
}
