package steps

import (
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/remoteminer-go/internal/domain/territory"
)

// InitializeTerritoryScenario registers zone classification steps
func InitializeTerritoryScenario(sc *godog.ScenarioContext) {
	sc.Step(`^zone "([^"]*)" should be classified as "([^"]*)"$`, zoneShouldBeClassifiedAs)
	sc.Step(`^the exits of zone "([^"]*)" in a world of radius (\d+) should be "([^"]*)"$`, theExitsOfZoneShouldBe)
}

func classify(zone string) string {
	if _, ok := territory.ParseZone(zone); !ok {
		return "invalid"
	}
	switch {
	case territory.IsResourceRichZone(zone):
		return "resource-rich"
	case territory.IsGuardedZone(zone):
		return "guarded"
	default:
		return "standard"
	}
}

func zoneShouldBeClassifiedAs(zone, class string) error {
	if got := classify(zone); got != class {
		return fmt.Errorf("expected %s to be %s, got %s", zone, class, got)
	}
	return nil
}

func theExitsOfZoneShouldBe(zone string, radius int, expected string) error {
	var names []string
	for _, dir := range territory.NewTopology(radius).ExitDirections(zone) {
		names = append(names, dir.String())
	}
	if got := strings.Join(names, ","); got != expected {
		return fmt.Errorf("expected exits %q for %s, got %q", expected, zone, got)
	}
	return nil
}
