package forecast

import "github.com/kilianp07/econdispatch/core/factory"

var (
	weatherRegistry = factory.NewRegistry[WeatherModel]()
	deriverRegistry = factory.NewRegistry[Deriver]()
)

// RegisterWeather adds a weather model factory.
func RegisterWeather(typeTag string, f factory.Factory[WeatherModel]) error {
	return weatherRegistry.Register(typeTag, f)
}

// NewWeather builds the weather model described by cfg.
func NewWeather(cfg factory.ModuleConfig) (WeatherModel, error) {
	return weatherRegistry.Create(cfg)
}

// WeatherTypes lists the registered weather model types.
func WeatherTypes() []string { return weatherRegistry.Types() }

// RegisterDeriver adds a deriver factory.
func RegisterDeriver(typeTag string, f factory.Factory[Deriver]) error {
	return deriverRegistry.Register(typeTag, f)
}

// NewDeriver builds the deriver described by cfg.
func NewDeriver(cfg factory.ModuleConfig) (Deriver, error) {
	return deriverRegistry.Create(cfg)
}

// DeriverTypes lists the registered deriver types.
func DeriverTypes() []string { return deriverRegistry.Types() }

func init() {
	_ = RegisterWeather("static", func(_ string, conf map[string]any) (WeatherModel, error) {
		var c StaticConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewStatic(c), nil
	})
	_ = RegisterWeather("file", func(_ string, conf map[string]any) (WeatherModel, error) {
		var c FileConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewFile(c)
	})
	_ = RegisterDeriver("linear", func(_ string, conf map[string]any) (Deriver, error) {
		var c LinearConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewLinear(c)
	})
	_ = RegisterDeriver("calendar", func(_ string, conf map[string]any) (Deriver, error) {
		var c CalendarConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewCalendar(c), nil
	})
	_ = RegisterDeriver("passthrough", func(_ string, conf map[string]any) (Deriver, error) {
		var c PassthroughConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewPassthrough(c), nil
	})
}
