package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"herdcore/pkg/domain"
)

const dateLayout = "2006-01-02"

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

func parseSex(value string) (domain.Sex, error) {
	switch value {
	case "":
		return "", nil
	case "F", "f", "female":
		return domain.SexFemale, nil
	case "M", "m", "male":
		return domain.SexMale, nil
	default:
		return "", fmt.Errorf("invalid sex %q, expected F or M", value)
	}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
