package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration time.Duration, которая дополнительно понимает суффикс дней: "7d", "30d".
type Duration time.Duration

// Std возвращает значение как time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// SetValue реализует cleanenv.Setter для значений из окружения.
func (d *Duration) SetValue(s string) error {
	return d.UnmarshalText([]byte(s))
}

// UnmarshalText разбирает значение из YAML.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// ParseDuration разбирает строку формата time.ParseDuration или "<N>d".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("config.ParseDuration: invalid days value %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("config.ParseDuration: %w", err)
	}
	return parsed, nil
}
