package debugsink

import "github.com/kilianp07/econdispatch/core/factory"

// StoreConfig holds the settings shared by the built-in stores.
type StoreConfig struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

var registry = factory.NewRegistry[Store]()

// Register adds a store factory.
func Register(typeTag string, f factory.Factory[Store]) error {
	return registry.Register(typeTag, f)
}

// New builds the store described by cfg.
func New(cfg factory.ModuleConfig) (Store, error) {
	return registry.Create(cfg)
}

func decode(conf map[string]any) (StoreConfig, error) {
	var c StoreConfig
	err := factory.Decode(conf, &c)
	return c, err
}

func init() {
	_ = Register("jsonl", func(_ string, conf map[string]any) (Store, error) {
		c, err := decode(conf)
		if err != nil {
			return nil, err
		}
		return NewJSONLStore(c.Path)
	})
	_ = Register("rotating", func(_ string, conf map[string]any) (Store, error) {
		c, err := decode(conf)
		if err != nil {
			return nil, err
		}
		if c.MaxSizeMB == 0 {
			c.MaxSizeMB = 10
		}
		return NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
	})
	_ = Register("sqlite", func(_ string, conf map[string]any) (Store, error) {
		c, err := decode(conf)
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(c.Path)
	})
}
