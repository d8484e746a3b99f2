package forecast

import (
	"fmt"
	"time"

	"github.com/kilianp07/econdispatch/core/model"
)

// LinearConfig describes output = intercept + sum(coef * raw[var]).
type LinearConfig struct {
	Output       string             `json:"output"`
	Intercept    float64            `json:"intercept"`
	Coefficients map[string]float64 `json:"coefficients"`
	// Min clamps the result from below when set.
	Min *float64 `json:"min"`
}

// Linear derives one variable as a linear function of weather values, such as
// a building load regressed on outdoor temperature.
type Linear struct {
	cfg LinearConfig
}

// NewLinear validates cfg and returns the deriver.
func NewLinear(cfg LinearConfig) (*Linear, error) {
	if cfg.Output == "" {
		return nil, fmt.Errorf("linear deriver: output name required")
	}
	return &Linear{cfg: cfg}, nil
}

func (l *Linear) Derive(_ time.Time, raw map[string]float64) (model.ForecastRecord, error) {
	v := l.cfg.Intercept
	for name, c := range l.cfg.Coefficients {
		x, ok := raw[name]
		if !ok {
			return nil, fmt.Errorf("linear deriver %s: missing weather variable %q", l.cfg.Output, name)
		}
		v += c * x
	}
	if l.cfg.Min != nil && v < *l.cfg.Min {
		v = *l.cfg.Min
	}
	return model.ForecastRecord{l.cfg.Output: v}, nil
}

// CalendarConfig sets the daytime window, inclusive, in local hours.
type CalendarConfig struct {
	DayStart int `json:"day_start"`
	DayEnd   int `json:"day_end"`
}

// Calendar derives time-of-day variables: hour, weekday (0 is Sunday) and
// is_daytime.
type Calendar struct {
	cfg CalendarConfig
}

// NewCalendar returns a Calendar deriver. The default window is 08:00 to
// 19:59.
func NewCalendar(cfg CalendarConfig) *Calendar {
	if cfg.DayStart == 0 && cfg.DayEnd == 0 {
		cfg.DayStart, cfg.DayEnd = 8, 19
	}
	return &Calendar{cfg: cfg}
}

func (c *Calendar) Derive(ts time.Time, _ map[string]float64) (model.ForecastRecord, error) {
	h := ts.Hour()
	day := 0.0
	if h >= c.cfg.DayStart && h <= c.cfg.DayEnd {
		day = 1
	}
	return model.ForecastRecord{
		"hour":       float64(h),
		"weekday":    float64(ts.Weekday()),
		"is_daytime": day,
	}, nil
}

// PassthroughConfig lists the weather variables to copy, optionally renamed.
type PassthroughConfig struct {
	Variables []string          `json:"variables"`
	Rename    map[string]string `json:"rename"`
}

// Passthrough copies raw weather values into the forecast record.
type Passthrough struct {
	cfg PassthroughConfig
}

// NewPassthrough returns a Passthrough deriver. With no variables listed it
// copies everything.
func NewPassthrough(cfg PassthroughConfig) *Passthrough {
	return &Passthrough{cfg: cfg}
}

func (p *Passthrough) Derive(_ time.Time, raw map[string]float64) (model.ForecastRecord, error) {
	out := model.ForecastRecord{}
	if len(p.cfg.Variables) == 0 {
		for k, v := range raw {
			out[p.name(k)] = v
		}
		return out, nil
	}
	for _, k := range p.cfg.Variables {
		v, ok := raw[k]
		if !ok {
			return nil, fmt.Errorf("passthrough: missing weather variable %q", k)
		}
		out[p.name(k)] = v
	}
	return out, nil
}

func (p *Passthrough) name(k string) string {
	if n, ok := p.cfg.Rename[k]; ok {
		return n
	}
	return k
}
