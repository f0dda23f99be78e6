package models

import (
	"time"

	"github.com/google/uuid"
)

// --- Role Enum ---
type Role string

const (
	RoleSeeker   Role = "seeker"
	RoleEmployer Role = "employer"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleSeeker, RoleEmployer, RoleAdmin:
		return true
	default:
		return false
	}
}

// --- Job classification enums ---
type Industry string

const (
	IndustryBusiness          Industry = "Business"
	IndustryIT                Industry = "Information Technology"
	IndustryBanking           Industry = "Banking"
	IndustryEducation         Industry = "Education/Training"
	IndustryTelecommunication Industry = "Telecommunication"
	IndustryOthers            Industry = "Others"
)

type JobType string

const (
	JobTypePermanent  JobType = "Permanent"
	JobTypeTemporary  JobType = "Temporary"
	JobTypeInternship JobType = "Internship"
)

type Education string

const (
	EducationBachelors Education = "Bachelors"
	EducationMasters   Education = "Masters"
	EducationPhd       Education = "Phd"
)

type Experience string

const (
	ExperienceNone         Experience = "No Experience"
	ExperienceOneToTwo     Experience = "1 Year - 2 Years"
	ExperienceTwoToFive    Experience = "2 Year - 5 Years"
	ExperienceFiveAndAbove Experience = "5 Years+"
)

// DefaultApplicationWindow is how long a job accepts applications when no lastDate is given.
const DefaultApplicationWindow = 7 * 24 * time.Hour

// Location is a GeoJSON-like point resolved from a job's address.
type Location struct {
	Type             string     `json:"type"`
	Coordinates      [2]float64 `json:"coordinates"` // [longitude, latitude]
	FormattedAddress string     `json:"formattedAddress"`
	City             string     `json:"city"`
	State            string     `json:"state"`
	Zipcode          string     `json:"zipcode"`
	Country          string     `json:"country"`
}

// NewPoint builds a Location from latitude/longitude.
func NewPoint(latitude, longitude float64) Location {
	return Location{Type: "Point", Coordinates: [2]float64{longitude, latitude}}
}

func (l Location) Longitude() float64 { return l.Coordinates[0] }
func (l Location) Latitude() float64  { return l.Coordinates[1] }

// Applicant records one successful application to a job.
type Applicant struct {
	ApplicantID    uuid.UUID `json:"id"`
	ResumeFilename string    `json:"resume"`
	AppliedAt      time.Time `json:"appliedAt"`
}

// Job represents a posted position.
type Job struct {
	ID                uuid.UUID   `json:"id"`
	Title             string      `json:"title"`
	Slug              string      `json:"slug"`
	Description       string      `json:"description"`
	Email             string      `json:"email,omitempty"`
	Address           string      `json:"address"`
	Company           string      `json:"company"`
	Industry          []Industry  `json:"industry"`
	JobType           JobType     `json:"jobType"`
	MinEducation      Education   `json:"minEducation"`
	Experience        Experience  `json:"experience"`
	Positions         int         `json:"positions"`
	Salary            float64     `json:"salary"`
	Location          *Location   `json:"location,omitempty"`
	PostingDate       time.Time   `json:"postingDate"`
	LastDate          time.Time   `json:"lastDate"`
	UserID            uuid.UUID   `json:"user"`
	ApplicantsApplied []Applicant `json:"applicantsApplied,omitempty"` // only loaded on demand
	Version           int64       `json:"-"`                           // bumped by every update
}

// CanBeModifiedBy implements the ownership-or-admin rule. Admin is a role, never an id.
func (j *Job) CanBeModifiedBy(u *User) bool {
	if u == nil {
		return false
	}
	return j.UserID == u.ID || u.Role == RoleAdmin
}

// AcceptsApplicationsAt reports whether the deadline has not passed at t.
func (j *Job) AcceptsApplicationsAt(t time.Time) bool {
	return !t.After(j.LastDate)
}

// HasApplicant reports whether userID already applied.
func (j *Job) HasApplicant(userID uuid.UUID) bool {
	for _, a := range j.ApplicantsApplied {
		if a.ApplicantID == userID {
			return true
		}
	}
	return false
}

// Owner is the public part of a user embedded in single-job reads.
type Owner struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// JobWithOwner is a job with its owner's name resolved.
type JobWithOwner struct {
	Job
	Owner Owner `json:"user"`
}

// ExperienceStats aggregates jobs of one experience bucket.
type ExperienceStats struct {
	Experience   string  `json:"experience"`
	TotalJobs    int64   `json:"totalJobs"`
	AvgPositions float64 `json:"avgPositions"`
	AvgSalary    float64 `json:"avgSalary"`
	MinSalary    float64 `json:"minSalary"`
	MaxSalary    float64 `json:"maxSalary"`
}

// User represents an account.
type User struct {
	ID                  uuid.UUID  `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	Role                Role       `json:"role"`
	PasswordHash        string     `json:"-"`
	ResetPasswordToken  *string    `json:"-"`
	ResetPasswordExpire *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"createdAt"`
}
