package screens

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"peopledesk/internal/core/id"
)

// Employee is a row of the employee directory.
type Employee struct {
	ID             id.ID           `json:"id" list:"id"`
	EmployeeNo     string          `json:"employeeNo" list:"search,sort" label:"Employee No."`
	FullName       string          `json:"fullName" list:"search"`
	Email          string          `json:"email" list:"search"`
	Phone          string          `json:"phone"`
	Department     string          `json:"department" list:"search,filter" db:"department_name"`
	Branch         string          `json:"branch" list:"filter"`
	JobTitle       string          `json:"jobTitle" list:"search"`
	Grade          string          `json:"grade" list:"filter"`
	EmploymentType string          `json:"employmentType" list:"filter,fold" options:"Full-time|Part-time|Contract|Intern"`
	Status         string          `json:"status" list:"filter,fold" options:"Active|Probation|On Leave|Terminated"`
	Gender         string          `json:"gender" list:"filter" options:"Female|Male"`
	Salary         decimal.Decimal `json:"salary"`
	HireDate       time.Time       `json:"hireDate"`
	Manager        *string         `json:"manager"`
}

// Department is a row of the department list.
type Department struct {
	ID        id.ID           `json:"id" list:"id"`
	Code      string          `json:"code" list:"search"`
	Name      string          `json:"name" list:"search,sort"`
	Head      string          `json:"head" list:"search"`
	Branch    string          `json:"branch" list:"filter"`
	Headcount int             `json:"headcount"`
	Budget    decimal.Decimal `json:"budget"`
	Status    string          `json:"status" list:"filter" options:"Active|Inactive"`
}

// Branch is an office location.
type Branch struct {
	ID        id.ID     `json:"id" list:"id"`
	Code      string    `json:"code" list:"search"`
	Name      string    `json:"name" list:"search,sort"`
	City      string    `json:"city" list:"search,filter"`
	Country   string    `json:"country" list:"filter"`
	Manager   string    `json:"manager" list:"search"`
	Phone     string    `json:"phone"`
	Employees int       `json:"employees"`
	OpenedAt  time.Time `json:"openedAt"`
	Status    string    `json:"status" list:"filter" options:"Active|Closed"`
}

// JobGrade is a salary band.
type JobGrade struct {
	ID        id.ID           `json:"id" list:"id"`
	Code      string          `json:"code" list:"search,sort"`
	Title     string          `json:"title" list:"search"`
	Level     int             `json:"level" list:"filter"`
	Track     string          `json:"track" list:"filter" options:"Individual Contributor|Management|Executive"`
	MinSalary decimal.Decimal `json:"minSalary"`
	MaxSalary decimal.Decimal `json:"maxSalary"`
	Currency  string          `json:"currency" list:"filter"`
	Status    string          `json:"status" list:"filter" options:"Active|Archived"`
}

// LeaveRequest is a time-off request awaiting or past approval.
type LeaveRequest struct {
	ID         id.ID     `json:"id" list:"id"`
	RequestNo  string    `json:"requestNo" list:"search"`
	Employee   string    `json:"employee" list:"search"`
	Department string    `json:"department" list:"filter"`
	LeaveType  string    `json:"leaveType" list:"filter" options:"Annual|Sick|Maternity|Paternity|Unpaid|Compassionate"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	Days       int       `json:"days"`
	Status     string    `json:"status" list:"filter,fold" options:"Pending|Approved|Rejected|Cancelled"`
	Reason     string    `json:"reason" list:"search"`
	AppliedAt  time.Time `json:"appliedAt" list:"sort:desc"`
	Approver   *string   `json:"approver"`
}

var departments = []struct{ code, name string }{
	{"FIN", "Finance"}, {"HR", "Human Resources"}, {"IT", "Information Technology"},
	{"OPS", "Operations"}, {"SAL", "Sales"}, {"MKT", "Marketing"}, {"LEG", "Legal"},
	{"PRC", "Procurement"}, {"CS", "Customer Support"}, {"RND", "Research & Development"},
	{"ADM", "Administration"}, {"QA", "Quality Assurance"},
}

var branches = []struct{ code, name, city, country string }{
	{"HQ", "Head Office", "Addis Ababa", "Ethiopia"},
	{"NBO", "Nairobi Office", "Nairobi", "Kenya"},
	{"LOS", "Lagos Office", "Lagos", "Nigeria"},
	{"DXB", "Dubai Office", "Dubai", "UAE"},
	{"LON", "London Office", "London", "United Kingdom"},
	{"NYC", "New York Office", "New York", "USA"},
	{"BER", "Berlin Office", "Berlin", "Germany"},
	{"JNB", "Johannesburg Office", "Johannesburg", "South Africa"},
}

var jobTitles = []string{
	"Accountant", "Financial Analyst", "HR Officer", "Recruiter", "Software Engineer",
	"System Administrator", "Operations Manager", "Sales Executive", "Account Manager",
	"Marketing Specialist", "Legal Counsel", "Buyer", "Support Agent", "Research Scientist",
	"Office Manager", "QA Engineer", "Team Lead", "Data Analyst",
}

func generateEmployees() []Employee {
	g := newGenerator("employees")
	out := make([]Employee, 0, 120)
	for n := 1; n <= 120; n++ {
		name, email := g.person()
		dept := pick(g, departments)
		e := Employee{
			ID:             g.ident(n),
			EmployeeNo:     fmt.Sprintf("EMP-%04d", n),
			FullName:       name,
			Email:          email,
			Phone:          g.phone(),
			Department:     dept.name,
			Branch:         pick(g, branches).name,
			JobTitle:       pick(g, jobTitles),
			Grade:          fmt.Sprintf("G%d", g.between(1, 10)),
			EmploymentType: pick(g, []string{"Full-time", "Full-time", "Full-time", "Part-time", "Contract", "Intern"}),
			Status:         pick(g, []string{"Active", "Active", "Active", "Active", "Probation", "On Leave", "Terminated"}),
			Gender:         pick(g, []string{"Female", "Male"}),
			Salary:         g.money(1800, 12000, 50),
			HireDate:       g.daysAgo(365 * 9),
		}
		if n > 1 && g.chance(0.8) {
			mgr := out[g.rnd.IntN(len(out))].FullName
			e.Manager = &mgr
		}
		out = append(out, e)
	}
	return out
}

func generateDepartments() []Department {
	g := newGenerator("departments")
	out := make([]Department, 0, len(departments))
	for n, d := range departments {
		head, _ := g.person()
		status := "Active"
		if g.chance(0.1) {
			status = "Inactive"
		}
		out = append(out, Department{
			ID:        g.ident(n + 1),
			Code:      d.code,
			Name:      d.name,
			Head:      head,
			Branch:    pick(g, branches).name,
			Headcount: g.between(3, 60),
			Budget:    g.money(50000, 900000, 1000),
			Status:    status,
		})
	}
	return out
}

func generateBranches() []Branch {
	g := newGenerator("branches")
	out := make([]Branch, 0, len(branches))
	for n, b := range branches {
		mgr, _ := g.person()
		status := "Active"
		if n == len(branches)-1 {
			status = "Closed"
		}
		out = append(out, Branch{
			ID:        g.ident(n + 1),
			Code:      b.code,
			Name:      b.name,
			City:      b.city,
			Country:   b.country,
			Manager:   mgr,
			Phone:     g.phone(),
			Employees: g.between(5, 240),
			OpenedAt:  g.daysAgo(365 * 15),
			Status:    status,
		})
	}
	return out
}

func generateJobGrades() []JobGrade {
	g := newGenerator("job-grades")
	titles := []string{
		"Associate", "Junior Specialist", "Specialist", "Senior Specialist", "Lead",
		"Supervisor", "Manager", "Senior Manager", "Director", "Vice President",
	}
	out := make([]JobGrade, 0, len(titles))
	for n, title := range titles {
		level := n + 1
		track := "Individual Contributor"
		switch {
		case level >= 9:
			track = "Executive"
		case level >= 6:
			track = "Management"
		}
		floor := decimal.NewFromInt(int64(1500 + level*900))
		status := "Active"
		if g.chance(0.1) {
			status = "Archived"
		}
		out = append(out, JobGrade{
			ID:        g.ident(level),
			Code:      fmt.Sprintf("G%d", level),
			Title:     title,
			Level:     level,
			Track:     track,
			MinSalary: floor,
			MaxSalary: floor.Mul(decimal.NewFromFloat(1.6)).Round(0),
			Currency:  pick(g, []string{"USD", "USD", "ETB", "EUR"}),
			Status:    status,
		})
	}
	return out
}

func generateLeaveRequests() []LeaveRequest {
	g := newGenerator("leave-requests")
	staff := generateEmployees()
	reasons := []string{
		"Family event", "Medical appointment", "Vacation", "Wedding", "Recovery after surgery",
		"Childcare", "Personal matters", "Travel abroad", "Bereavement",
	}
	out := make([]LeaveRequest, 0, 80)
	for n := 1; n <= 80; n++ {
		emp := pick(g, staff)
		start := g.daysAgo(240)
		days := g.between(1, 15)
		status := pick(g, []string{"Pending", "Pending", "Approved", "Approved", "Approved", "Rejected", "Cancelled"})
		r := LeaveRequest{
			ID:         g.ident(n),
			RequestNo:  fmt.Sprintf("LR-%05d", 1000+n),
			Employee:   emp.FullName,
			Department: emp.Department,
			LeaveType:  pick(g, []string{"Annual", "Annual", "Sick", "Maternity", "Paternity", "Unpaid", "Compassionate"}),
			StartDate:  start,
			EndDate:    start.AddDate(0, 0, days-1),
			Days:       days,
			Status:     status,
			Reason:     pick(g, reasons),
			AppliedAt:  start.AddDate(0, 0, -g.between(1, 30)),
		}
		if status == "Approved" || status == "Rejected" {
			approver, _ := g.person()
			r.Approver = &approver
		}
		out = append(out, r)
	}
	return out
}
