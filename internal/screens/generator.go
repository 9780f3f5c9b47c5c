package screens

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"peopledesk/internal/core/id"
)

// generator produces deterministic mock data: the same screen name always
// yields the same dataset.
type generator struct {
	kind string
	rnd  *rand.Rand
	base time.Time
}

func newGenerator(kind string) *generator {
	h := fnv.New64a()
	_, _ = h.Write([]byte(kind))
	seed := h.Sum64()
	return &generator{
		kind: kind,
		rnd:  rand.New(rand.NewPCG(seed, seed>>1|1)),
		base: time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC),
	}
}

func (g *generator) ident(n int) id.ID { return id.Deterministic(g.kind, n) }

func pick[T any](g *generator, items []T) T { return items[g.rnd.IntN(len(items))] }

func (g *generator) between(lo, hi int) int { return lo + g.rnd.IntN(hi-lo+1) }

func (g *generator) chance(p float64) bool { return g.rnd.Float64() < p }

// money returns a whole amount in [lo, hi] rounded to step.
func (g *generator) money(lo, hi, step int) decimal.Decimal {
	n := g.between(lo/step, hi/step)
	return decimal.NewFromInt(int64(n * step))
}

// daysAgo returns a date up to maxDays before the dataset's reference date.
func (g *generator) daysAgo(maxDays int) time.Time {
	return g.base.AddDate(0, 0, -g.rnd.IntN(maxDays+1))
}

func (g *generator) person() (string, string) {
	first := pick(g, firstNames)
	last := pick(g, lastNames)
	return first + " " + last, strings.ToLower(first + "." + last + "@peopledesk.io")
}

func (g *generator) phone() string {
	return fmt.Sprintf("+1 (%03d) %03d-%04d", g.between(200, 989), g.between(200, 999), g.rnd.IntN(10000))
}

var firstNames = []string{
	"Sarah", "James", "Amina", "Daniel", "Lena", "Michael", "Hana", "Omar", "Grace", "Lucas",
	"Mekdes", "Noah", "Olivia", "Samuel", "Ruth", "David", "Chloe", "Yonas", "Emma", "Ethan",
	"Selam", "Isaac", "Maria", "Elias", "Zoe", "Abel", "Liya", "Henry", "Nina", "Paul",
}

var lastNames = []string{
	"Johnson", "Mekonnen", "Smith", "Tesfaye", "Brown", "Haile", "Garcia", "Bekele", "Miller",
	"Girma", "Davis", "Alemu", "Wilson", "Tadesse", "Moore", "Kebede", "Taylor", "Abebe",
	"Anderson", "Wolde", "Thomas", "Lemma", "Martin", "Desta",
}

var companies = []string{
	"Acme Corp", "Globex", "Initech", "Umbrella Health", "Stark Logistics", "Wayne Foods",
	"Soylent Labs", "Hooli", "Vandelay Imports", "Blue Nile Trading", "Abyssinia Tech",
	"Northwind Traders", "Contoso Retail", "Tyrell Systems",
}
