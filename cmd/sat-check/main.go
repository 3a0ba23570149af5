package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"sat-collisions.theprimeagen.com/pkg/hitbox"
	prettylog "sat-collisions.theprimeagen.com/pkg/pretty-log"
	quickmath "sat-collisions.theprimeagen.com/pkg/quick-math"
	"sat-collisions.theprimeagen.com/pkg/sat"
)

// parseRect reads "x,y,width,height[,degrees]", x and y being the center.
func parseRect(name, raw string) (*hitbox.Entity, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 && len(parts) != 5 {
		return nil, fmt.Errorf("-%s %q: want x,y,width,height[,degrees]", name, raw)
	}

	nums := make([]float64, 5)
	for i, p := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("-%s %q: %w", name, raw, err)
		}
		nums[i] = n
	}

	transform := quickmath.NewTransform(nums[0], nums[1], quickmath.DegToRad(nums[4]))
	return hitbox.NewRectEntity(name, transform, nums[2], nums[3])
}

func main() {
	a := ""
	flag.StringVar(&a, "a", "50,50,100,100", "first rect as x,y,width,height[,degrees]")

	b := ""
	flag.StringVar(&b, "b", "150,50,100,100,30", "second rect as x,y,width,height[,degrees]")

	verbose := false
	flag.BoolVar(&verbose, "v", false, "print vertices")
	flag.Parse()

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	prettylog.SetProgramLevelPrettyLogger(level, os.Stderr)
	logger := slog.Default().With("area", "SatCheck")

	ea, err := parseRect("a", a)
	if err != nil {
		logger.Error("bad rect", "error", err)
		os.Exit(2)
	}
	eb, err := parseRect("b", b)
	if err != nil {
		logger.Error("bad rect", "error", err)
		os.Exit(2)
	}

	logger.Debug("a", "hitbox", ea.Hitbox().Dump())
	logger.Debug("b", "hitbox", eb.Hitbox().Dump())

	axis, separated, err := sat.SeparatingAxis(ea.Hitbox(), eb.Hitbox())
	if err != nil {
		logger.Error("sat failed", "error", err)
		os.Exit(1)
	}

	if separated {
		fmt.Printf("separated, axis %s\n", axis.Norm())
		os.Exit(1)
	}
	fmt.Println("colliding")
}
