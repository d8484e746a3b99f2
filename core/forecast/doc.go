// Package forecast provides the weather models and derivation providers that
// feed the optimizer. A WeatherModel returns raw timesteps; each Deriver
// turns one timestep into named forecast variables.
package forecast
