package review

import "Mansoor88-6/activity-agent/internal/models"

// Employees lists each distinct employee of slots once, in order of first
// appearance
func Employees(slots []models.TimeSlot) []models.Employee {
	seen := make(map[string]struct{}, len(slots))
	employees := make([]models.Employee, 0, len(slots))
	for _, slot := range slots {
		id := slot.EmployeeID
		if id == "" {
			id = slot.Employee.ID
		}
		employee := slot.Employee
		employee.ID = id
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		employees = append(employees, employee)
	}
	return employees
}
