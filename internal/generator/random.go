package generator

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

// uniform draws from [lo, hi).
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// dateIn draws a calendar day from the inclusive window [start, end].
func dateIn(rng *rand.Rand, start, end time.Time) time.Time {
	start = truncateDay(start)
	days := int(truncateDay(end).Sub(start).Hours() / 24)
	return start.AddDate(0, 0, rng.IntN(days+1))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// productNames takes the first n candidates. A short list is cycled and
// repeated names get a " 2", " 3", ... suffix.
func productNames(candidates []string, n int) []string {
	names := make([]string, n)
	for i := range names {
		name := candidates[i%len(candidates)]
		if round := i / len(candidates); round > 0 {
			name = fmt.Sprintf("%s %d", name, round+1)
		}
		names[i] = name
	}
	return names
}

func emailAddress(rng *rand.Rand, firstName, lastName string, domains []string) string {
	local := fmt.Sprintf("%s.%s%d", firstName, lastName, 1+rng.IntN(99))
	local = strings.ReplaceAll(local, " ", "")
	return strings.ToLower(local + "@" + pick(rng, domains))
}

// phoneNumber formats a ten digit French-style number: 0, one digit 1-9,
// then four pairs 10-99.
func phoneNumber(rng *rand.Rand) string {
	return fmt.Sprintf("0%d%d%d%d%d",
		1+rng.IntN(9), 10+rng.IntN(90), 10+rng.IntN(90), 10+rng.IntN(90), 10+rng.IntN(90))
}

func ptr[T any](v T) *T {
	return &v
}
