package models

import "time"

type User struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Name      string `json:"name,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

type Employee struct {
	ID   string `json:"id"`
	User *User  `json:"user,omitempty"`
}

// DisplayName returns the best available human-readable name
func (e Employee) DisplayName() string {
	if e.User != nil {
		if e.User.Name != "" {
			return e.User.Name
		}
		if name := e.User.FirstName + " " + e.User.LastName; name != " " {
			return name
		}
	}
	return e.ID
}

type Screenshot struct {
	ID         string     `json:"id,omitempty"`
	ThumbURL   string     `json:"thumbUrl"`
	FullURL    string     `json:"fullUrl"`
	RecordedAt *time.Time `json:"recordedAt,omitempty"`
}

// Key identifies a screenshot inside the gallery
func (s Screenshot) Key() string {
	return s.ThumbURL + "|" + s.FullURL
}

type TimeLog struct {
	ID        string     `json:"id"`
	StartedAt time.Time  `json:"startedAt"`
	StoppedAt *time.Time `json:"stoppedAt,omitempty"`
}

// TimeSlot is a backend time slot as fetched for review
type TimeSlot struct {
	ID          string       `json:"id"`
	EmployeeID  string       `json:"employeeId"`
	Employee    Employee     `json:"employee"`
	StartedAt   time.Time    `json:"startedAt"`
	Screenshots []Screenshot `json:"screenshots"`
	TimeLogs    []TimeLog    `json:"timeLogs,omitempty"`
}

// MinuteSlot is the time slot representing one minute key of an hour bucket,
// annotated with every distinct employee that has a slot at that key
type MinuteSlot struct {
	TimeSlot
	Employees []Employee `json:"employees"`
}

// MinuteKeys are the fixed minute keys of every hour bucket
var MinuteKeys = [6]string{"00", "10", "20", "30", "40", "50"}

// HourBucket groups minute slots of a single hour
type HourBucket struct {
	StartTime   string         `json:"startTime"`
	EndTime     string         `json:"endTime"`
	MinuteSlots [6]*MinuteSlot `json:"minuteSlots"`
}

// TimeSlotQuery selects the time slots loaded for review
type TimeSlotQuery struct {
	OrganizationID string
	EmployeeIDs    []string
	Start          time.Time
	End            time.Time
}
