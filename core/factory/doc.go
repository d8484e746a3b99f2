// Package factory provides a small generic registry used to instantiate modules
// from configuration. A module is defined by an instance name, a type tag and
// a map of raw settings. Factories decode the settings into typed structs and
// return the concrete implementation.
//
// Example usage:
//
//	reg := factory.NewRegistry[component.Component]()
//	reg.Register("boiler", func(name string, conf map[string]any) (component.Component, error) {
//	    var c boiler.Config
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return boiler.New(name, c)
//	})
//	b, err := reg.Create(factory.ModuleConfig{Name: "boiler1", Type: "boiler", Conf: map[string]any{"capacity": 8}})
package factory
