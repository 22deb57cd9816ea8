package weather

import "github.com/i474232898/weather-cache/internal/common"

// IconForCondition classifies a free-text condition label (as returned by
// upstream APIs) into an icon category. Unrecognized labels map to sunny.
func IconForCondition(text string) Icon {
	switch {
	case common.HasAnyFold(text, "snow", "sleet", "blizzard", "ice pellets"):
		return IconSnowy
	case common.HasAnyFold(text, "rain", "shower", "drizzle", "thunder", "storm"):
		return IconRainy
	case common.HasAnyFold(text, "partly"):
		return IconPartlyCloudy
	case common.HasAnyFold(text, "cloud", "overcast", "fog", "mist"):
		return IconCloudy
	default:
		return IconSunny
	}
}
