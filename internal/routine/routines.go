package routine

import (
	"context"

	"github.com/hammamikhairi/brewctl/internal/domain"
	"github.com/hammamikhairi/brewctl/internal/logger"
)

// heat turns the heater on and holds it until the vessel reaches the
// target temperature. No timeout: it runs until the target is reached
// or the context is cancelled.
//
// Parameters: temp (°C).
func heat(ctx context.Context, hw domain.Controller, log *logger.Logger, p domain.Params) error {
	target, err := floatParam(p, "temp")
	if err != nil {
		return err
	}

	log.Info("heating water to %g°C", target)
	hw.HeaterOn()
	for ctx.Err() == nil && hw.Temperature() < target {
		hw.Sleep(ctx, tickInterval)
	}
	hw.HeaterOff()
	return ctx.Err()
}

// cool turns the cooler on and holds it until the vessel drops to the
// target temperature. Symmetric to heat.
//
// Parameters: temp (°C).
func cool(ctx context.Context, hw domain.Controller, log *logger.Logger, p domain.Params) error {
	target, err := floatParam(p, "temp")
	if err != nil {
		return err
	}

	log.Info("cooling water to %g°C", target)
	hw.CoolerOn()
	for ctx.Err() == nil && hw.Temperature() > target {
		hw.Sleep(ctx, tickInterval)
	}
	hw.CoolerOff()
	return ctx.Err()
}

// maintainHeat holds a temperature with the heater for a fixed time.
//
// Parameters: time (s), temp (°C), tolerance (°C).
func maintainHeat(ctx context.Context, hw domain.Controller, log *logger.Logger, p domain.Params) error {
	q := clone(p)
	q["type"] = "heat"
	return maintain(ctx, hw, log, q)
}

// maintainCool holds a temperature with the cooler for a fixed time.
//
// Parameters: time (s), temp (°C), tolerance (°C).
func maintainCool(ctx context.Context, hw domain.Controller, log *logger.Logger, p domain.Params) error {
	q := clone(p)
	q["type"] = "cool"
	return maintain(ctx, hw, log, q)
}

// maintain is a hysteresis controller: it holds the vessel within
// [temp-tolerance, temp+tolerance] for the given duration, toggling the
// active actuator only when the reading exits the band. The duration is
// measured against the controller's elapsed clock, not the tick count,
// so it is immune to tick drift. On exit both heater and cooler are
// forced off regardless of type.
//
// The two bands are asymmetric by design: overshooting high while
// maintaining heat switches the heater off, while overshooting high in
// cool mode turns the cooler on.
//
// Parameters: time (s), temp (°C), tolerance (°C), type ("heat"|"cool").
func maintain(ctx context.Context, hw domain.Controller, log *logger.Logger, p domain.Params) error {
	duration, err := floatParam(p, "time")
	if err != nil {
		return err
	}
	target, err := floatParam(p, "temp")
	if err != nil {
		return err
	}
	tolerance, err := floatParam(p, "tolerance")
	if err != nil {
		return err
	}
	typ, err := stringParam(p, "type")
	if err != nil {
		return err
	}
	if typ != "heat" && typ != "cool" {
		return errBadType(typ)
	}

	log.Info("maintaining %g°C ±%g°C for %gs (%s)", target, tolerance, duration, typ)

	start := hw.Elapsed()
	for ctx.Err() == nil && hw.Elapsed()-start < duration {
		hw.Sleep(ctx, tickInterval)
		current := hw.Temperature()
		log.Debug("temperature @ %.2f°C", current)

		if current-tolerance > target {
			if typ == "heat" {
				hw.HeaterOff()
			} else {
				hw.CoolerOn()
			}
		}
		if current+tolerance < target {
			if typ == "heat" {
				hw.HeaterOn()
			} else {
				hw.CoolerOff()
			}
		}
	}

	// Safety convergence point: never leave either actuator running.
	hw.HeaterOff()
	hw.CoolerOff()
	return ctx.Err()
}

// pump fires a single dispense. No loop and no verification of the
// delivered volume.
//
// Parameters: pump (id), volume (ml).
func pump(ctx context.Context, hw domain.Controller, log *logger.Logger, p domain.Params) error {
	id, err := stringParam(p, "pump")
	if err != nil {
		return err
	}
	volume, err := floatParam(p, "volume")
	if err != nil {
		return err
	}

	log.Info("dispensing %g ml from pump %s", volume, id)
	hw.Dispense(id, volume)
	return nil
}

// stir runs the stirrer for a fixed time, measured against the elapsed
// clock.
//
// Parameters: time (s).
func stir(ctx context.Context, hw domain.Controller, log *logger.Logger, p domain.Params) error {
	duration, err := floatParam(p, "time")
	if err != nil {
		return err
	}

	log.Info("stirring for %gs", duration)

	start := hw.Elapsed()
	hw.StirrerOn()
	for ctx.Err() == nil && hw.Elapsed()-start < duration {
		hw.Sleep(ctx, tickInterval)
	}
	hw.StirrerOff()
	return ctx.Err()
}
