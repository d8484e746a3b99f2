// Package system orchestrates the component models. It keeps the component
// registry and capability graph, aggregates forecasts and optimization
// parameters, decides when the optimizer runs and turns its allocation into
// device commands.
//
// A System has no timer of its own. The caller drives it with Tick:
//
//	sys, _ := system.New(system.Config{Interval: time.Hour}, opt, weather, log)
//	sys.AddComponent(b, boiler.TypeTag)
//	res, err := sys.Tick(ctx, time.Now(), inputs)
package system
