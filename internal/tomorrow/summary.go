package tomorrow

import (
	"fmt"
	"strconv"
	"strings"

	"daily-digest/internal/model"
)

// SummaryHeader starts every forecast summary.
const SummaryHeader = "5-Day Weather Forecast:\n"

// Summary renders one line per day, in order, under SummaryHeader.
func Summary(days []model.ForecastDay) string {
	b := &strings.Builder{}
	b.WriteString(SummaryHeader)
	for _, d := range days {
		fmt.Fprintf(b, "%s: Max Temp: %s°F, Min Temp: %s°F, Precipitation Probability: %s%%, Wind Speed: %s mph, Humidity: %s%%\n",
			d.Date, num(d.TempMax), num(d.TempMin), num(d.PrecipitationProbability), num(d.WindSpeed), num(d.Humidity))
	}
	return b.String()
}

// num prints the shortest decimal form: 75 stays "75", 75.25 stays "75.25".
func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
