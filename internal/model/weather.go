package model

import "fmt"

// Location is a latitude/longitude pair kept as text so it is sent to the
// forecast API exactly as configured.
type Location struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s,%s", l.Latitude, l.Longitude)
}

// ForecastDay is one daily interval of a forecast in imperial units.
type ForecastDay struct {
	Date                     string  `json:"date"`
	TempMax                  float64 `json:"temp_max"`
	TempMin                  float64 `json:"temp_min"`
	PrecipitationProbability float64 `json:"precipitation_probability"`
	WindSpeed                float64 `json:"wind_speed"`
	Humidity                 float64 `json:"humidity"`
}
