package screens

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"peopledesk/internal/core/id"
)

// Lead is a prospective customer.
type Lead struct {
	ID             id.ID           `json:"id" list:"id"`
	Name           string          `json:"name" list:"search"`
	Company        string          `json:"company" list:"search"`
	Email          string          `json:"email" list:"search"`
	Phone          string          `json:"phone"`
	Source         string          `json:"source" list:"filter" options:"Website|Referral|Cold Call|Event|Social Media"`
	Status         string          `json:"status" list:"filter,fold" options:"New|Contacted|Qualified|Converted|Lost"`
	Owner          string          `json:"owner" list:"search,filter"`
	EstimatedValue decimal.Decimal `json:"estimatedValue"`
	CreatedAt      time.Time       `json:"createdAt" list:"sort:desc"`
}

// Deal is an opportunity in the sales pipeline.
type Deal struct {
	ID            id.ID           `json:"id" list:"id"`
	Title         string          `json:"title" list:"search"`
	Account       string          `json:"account" list:"search"`
	Stage         string          `json:"stage" list:"filter" options:"Prospecting|Qualification|Proposal|Negotiation|Closed Won|Closed Lost"`
	Owner         string          `json:"owner" list:"filter"`
	Amount        decimal.Decimal `json:"amount" list:"sort:desc"`
	Probability   int             `json:"probability"`
	ExpectedClose time.Time       `json:"expectedClose"`
}

// Commission is an agent's earning on a closed deal.
type Commission struct {
	ID     id.ID           `json:"id" list:"id"`
	Agent  string          `json:"agent" list:"search,filter"`
	Deal   string          `json:"deal" list:"search"`
	Period string          `json:"period" list:"filter,sort"`
	Rate   float64         `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
	Status string          `json:"status" list:"filter" options:"Pending|Approved|Paid"`
	PaidAt *time.Time      `json:"paidAt"`
}

// RoutingRule assigns incoming leads to an owner.
type RoutingRule struct {
	ID        id.ID  `json:"id" list:"id"`
	Name      string `json:"name" list:"search"`
	Priority  int    `json:"priority" list:"sort"`
	Condition string `json:"condition" list:"search"`
	AssignTo  string `json:"assignTo" list:"search,filter"`
	Channel   string `json:"channel" list:"filter" options:"Email|Web Form|Phone|Chat"`
	Active    bool   `json:"active" list:"filter"`
}

// Quotation is a price offer sent to a customer.
type Quotation struct {
	ID         id.ID           `json:"id" list:"id"`
	Number     string          `json:"number" list:"search,sort:desc"`
	Customer   string          `json:"customer" list:"search"`
	Owner      string          `json:"owner" list:"filter"`
	Status     string          `json:"status" list:"filter,fold" options:"Draft|Sent|Accepted|Declined|Expired"`
	Total      decimal.Decimal `json:"total"`
	Currency   string          `json:"currency" list:"filter"`
	IssuedAt   time.Time       `json:"issuedAt"`
	ValidUntil time.Time       `json:"validUntil"`
}

var salesReps = []string{
	"Sarah Johnson", "Daniel Haile", "Grace Bekele", "Lucas Miller", "Amina Tesfaye", "Omar Garcia",
}

func generateLeads() []Lead {
	g := newGenerator("leads")
	out := make([]Lead, 0, 150)
	for n := 1; n <= 150; n++ {
		name, _ := g.person()
		company := pick(g, companies)
		out = append(out, Lead{
			ID:             g.ident(n),
			Name:           name,
			Company:        company,
			Email:          fmt.Sprintf("contact%03d@%s.example", n, slug(company)),
			Phone:          g.phone(),
			Source:         pick(g, []string{"Website", "Website", "Referral", "Cold Call", "Event", "Social Media"}),
			Status:         pick(g, []string{"New", "New", "Contacted", "Qualified", "Converted", "Lost"}),
			Owner:          pick(g, salesReps),
			EstimatedValue: g.money(500, 80000, 100),
			CreatedAt:      g.daysAgo(300),
		})
	}
	return out
}

var stageProbability = map[string]int{
	"Prospecting": 10, "Qualification": 25, "Proposal": 50, "Negotiation": 75, "Closed Won": 100, "Closed Lost": 0,
}

func generateDeals() []Deal {
	g := newGenerator("deals")
	stages := []string{"Prospecting", "Qualification", "Proposal", "Negotiation", "Closed Won", "Closed Lost"}
	products := []string{"HR Suite", "Payroll Module", "Recruitment Portal", "Attendance Kit", "Analytics Add-on", "Support Plan"}
	out := make([]Deal, 0, 90)
	for n := 1; n <= 90; n++ {
		stage := pick(g, stages)
		account := pick(g, companies)
		out = append(out, Deal{
			ID:            g.ident(n),
			Title:         fmt.Sprintf("%s for %s", pick(g, products), account),
			Account:       account,
			Stage:         stage,
			Owner:         pick(g, salesReps),
			Amount:        g.money(2000, 250000, 500),
			Probability:   stageProbability[stage],
			ExpectedClose: g.base.AddDate(0, 0, g.between(-60, 180)),
		})
	}
	return out
}

func generateCommissions() []Commission {
	g := newGenerator("commissions")
	won := make([]Deal, 0)
	for _, d := range generateDeals() {
		if d.Stage == "Closed Won" {
			won = append(won, d)
		}
	}
	if len(won) == 0 {
		return nil
	}
	periods := []string{"2023-Q3", "2023-Q4", "2024-Q1", "2024-Q2"}

	out := make([]Commission, 0, 60)
	for n := 1; n <= 60; n++ {
		deal := pick(g, won)
		rate := float64(g.between(3, 12)) / 100
		c := Commission{
			ID:     g.ident(n),
			Agent:  deal.Owner,
			Deal:   deal.Title,
			Period: pick(g, periods),
			Rate:   rate,
			Amount: deal.Amount.Mul(decimal.NewFromFloat(rate)).Round(2),
			Status: pick(g, []string{"Pending", "Approved", "Paid", "Paid"}),
		}
		if c.Status == "Paid" {
			paid := g.daysAgo(200)
			c.PaidAt = &paid
		}
		out = append(out, c)
	}
	return out
}

func generateRoutingRules() []RoutingRule {
	g := newGenerator("routing-rules")
	conditions := []string{
		"source = Website", "country = Kenya", "estimatedValue > 50000", "company contains Tech",
		"source = Event", "status = New", "country = Nigeria", "source = Referral",
		"estimatedValue < 1000", "country = UAE", "source = Social Media", "company contains Foods",
		"country = Germany", "source = Cold Call", "estimatedValue between 10000 and 50000",
	}
	out := make([]RoutingRule, 0, len(conditions))
	for n, cond := range conditions {
		out = append(out, RoutingRule{
			ID:        g.ident(n + 1),
			Name:      fmt.Sprintf("Rule %02d", n+1),
			Priority:  n + 1,
			Condition: cond,
			AssignTo:  pick(g, salesReps),
			Channel:   pick(g, []string{"Email", "Web Form", "Phone", "Chat"}),
			Active:    g.chance(0.8),
		})
	}
	return out
}

func generateQuotations() []Quotation {
	g := newGenerator("quotations")
	out := make([]Quotation, 0, 70)
	for n := 1; n <= 70; n++ {
		issued := g.daysAgo(200)
		out = append(out, Quotation{
			ID:         g.ident(n),
			Number:     fmt.Sprintf("QT-2024-%04d", n),
			Customer:   pick(g, companies),
			Owner:      pick(g, salesReps),
			Status:     pick(g, []string{"Draft", "Sent", "Sent", "Accepted", "Declined", "Expired"}),
			Total:      g.money(1000, 150000, 50),
			Currency:   pick(g, []string{"USD", "USD", "EUR", "ETB"}),
			IssuedAt:   issued,
			ValidUntil: issued.AddDate(0, 0, 30),
		})
	}
	return out
}
