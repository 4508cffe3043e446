package domain

// Account is the role-resolved identity of a signed-in user. It is either a
// JobSeekerAccount or an EmployerAccount; callers dispatch with a type switch.
type Account interface {
	AccountUser() User
	isAccount()
}

type JobSeekerAccount struct {
	User    User
	Profile JobSeeker
}

type EmployerAccount struct {
	User    User
	Profile Employer
}

func (a JobSeekerAccount) AccountUser() User { return a.User }
func (a EmployerAccount) AccountUser() User  { return a.User }

func (JobSeekerAccount) isAccount() {}
func (EmployerAccount) isAccount()  {}

// Scope is the aggregation key for application counts: a single job or
// every job an employer owns.
type Scope struct {
	JobID      string
	EmployerID string
}

func JobScope(jobID string) Scope { return Scope{JobID: jobID} }

func EmployerScope(employerID string) Scope { return Scope{EmployerID: employerID} }

// StatusCounts maps every status to its application count.
type StatusCounts map[Status]int

// NewStatusCounts returns counts with all statuses present at zero.
func NewStatusCounts() StatusCounts {
	c := make(StatusCounts, len(Statuses))
	for _, s := range Statuses {
		c[s] = 0
	}
	return c
}

func (c StatusCounts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

func (c StatusCounts) Pending() int { return c[StatusApplied] }
