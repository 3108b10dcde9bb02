package plan

import "github.com/hammamikhairi/brewctl/internal/domain"

// next returns a pointer to a step id, for seeding plan literals.
func next(id int) *int { return &id }

// seed loads the built-in plans. These double as living documentation
// of the plan format; external plans are loaded with LoadFile.
func (l *MemoryLibrary) seed() {
	l.plans["Pale Ale Infusion Mash"] = &domain.Plan{
		Title: "Pale Ale Infusion Mash",
		Steps: map[int]domain.Step{
			0: {
				Message:    "Heating strike water to 66°C.",
				Icon:       domain.IconTemperature,
				BaseTask:   "heat",
				Parameters: domain.Params{"temp": 66.0},
				Next:       next(1),
			},
			1: {
				Message:  "Strike water ready. Add the grain to the mash tun.",
				Icon:     domain.IconLoadSyringe,
				BaseTask: domain.TaskHuman,
				Options: []domain.Option{
					{Text: "Grain is in", Next: 2},
				},
			},
			2: {
				Message:    "Mashing for 60 minutes at 66°C.",
				Icon:       domain.IconReactionChamber,
				BaseTask:   "maintainHeat",
				Parameters: domain.Params{"time": 3600.0, "temp": 66.0, "tolerance": 1.0},
				Next:       next(3),
			},
			3: {
				Message:  "Mash time is up. Did the iodine test pass?",
				Icon:     domain.IconInspect,
				BaseTask: domain.TaskHuman,
				Options: []domain.Option{
					{Text: "Yes, continue", Next: 4},
					{Text: "No, extend the mash", Next: 5},
				},
			},
			4: {
				Message:    "Stirring the mash before runoff.",
				Icon:       domain.IconReactionChamber,
				BaseTask:   "stir",
				Parameters: domain.Params{"time": 120.0},
				Next:       next(6),
			},
			5: {
				Message:    "Extending the mash by 15 minutes.",
				Icon:       domain.IconReactionChamber,
				BaseTask:   "maintainHeat",
				Parameters: domain.Params{"time": 900.0, "temp": 66.0, "tolerance": 1.0},
				Next:       next(3),
			},
			6: {
				Message:    "Transferring wort to the kettle.",
				Icon:       domain.IconDispensing,
				BaseTask:   "pump",
				Parameters: domain.Params{"pump": "A", "volume": 500.0},
				Next:       next(7),
			},
			7: {
				Message: "Mash complete. Wort is in the kettle.",
				Icon:    domain.IconReactionComplete,
				Done:    true,
			},
		},
	}

	l.plans["Lager Cold Crash"] = &domain.Plan{
		Title: "Lager Cold Crash",
		Steps: map[int]domain.Step{
			0: {
				Message:    "Chilling the vessel to 2°C.",
				Icon:       domain.IconTemperature,
				BaseTask:   "cool",
				Parameters: domain.Params{"temp": 2.0},
				Next:       next(1),
			},
			1: {
				Message:    "Holding at 2°C for two hours.",
				Icon:       domain.IconReactionChamber,
				BaseTask:   "maintainCool",
				Parameters: domain.Params{"time": 7200.0, "temp": 2.0, "tolerance": 1.0},
				Next:       next(2),
			},
			2: {
				Message: "Cold crash finished.",
				Icon:    domain.IconReactionComplete,
				Done:    true,
			},
		},
	}

	l.plans["Yeast Nutrient Dose"] = &domain.Plan{
		Title: "Yeast Nutrient Dose",
		Steps: map[int]domain.Step{
			0: {
				Message:  "Dose yeast nutrient into the fermenter?",
				Icon:     domain.IconInspect,
				BaseTask: domain.TaskHuman,
				Options: []domain.Option{
					{Text: "Dose now", Next: 1},
					{Text: "Skip", Next: 3},
				},
			},
			1: {
				Message:    "Dispensing 30 ml of nutrient solution.",
				Icon:       domain.IconDispensing,
				BaseTask:   "pump",
				Parameters: domain.Params{"pump": "B", "volume": 30.0},
				Next:       next(2),
			},
			2: {
				Message:    "Mixing the nutrient in.",
				BaseTask:   "stir",
				Parameters: domain.Params{"time": 60.0},
				Next:       next(3),
			},
			3: {
				Message: "Nutrient routine finished.",
				Icon:    domain.IconReactionComplete,
				Done:    true,
			},
		},
	}

	l.log.Debug("seeded %d built-in plans", len(l.plans))
}
