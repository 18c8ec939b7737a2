package middleware

import "github.com/jwalitptl/hms-api/internal/model"

var (
	admin              = []model.Role{model.RoleAdmin}
	doctor             = []model.Role{model.RoleDoctor}
	labStaff           = []model.Role{model.RoleLabStaff}
	frontDesk          = []model.Role{model.RoleReceptionist, model.RoleAdmin}
	clinicians         = []model.Role{model.RoleDoctor, model.RoleAdmin}
	laboratory         = []model.Role{model.RoleLabStaff, model.RoleAdmin}
	appointmentEditors = []model.Role{model.RoleReceptionist, model.RoleDoctor, model.RoleAdmin}
	labReportOrderers  = []model.Role{model.RoleReceptionist, model.RoleDoctor, model.RoleAdmin}
)

// policy maps each protected write or role-scoped read to the roles allowed
// to perform it. Reads not listed are open to every authenticated role.
var policy = map[string][]model.Role{
	"auth.register": admin,
	"admin":         admin,

	"patients.create":           frontDesk,
	"patients.update":           frontDesk,
	"patients.assignDoctor":     frontDesk,
	"patients.delete":           admin,
	"patients.addMedicalRecord": clinicians,

	"appointments.create": frontDesk,
	"appointments.cancel": frontDesk,
	"appointments.update": appointmentEditors,
	"appointments.mine":   doctor,

	"prescriptions.create": doctor,
	"prescriptions.update": doctor,
	"prescriptions.mine":   doctor,

	"doctor": doctor,

	"labReports.create":  labReportOrderers,
	"labReports.update":  laboratory,
	"labReports.upload":  laboratory,
	"labReports.pending": laboratory,
	"labReports.mine":    labStaff,
	"labReports.delete":  admin,

	"billing.create": frontDesk,
	"billing.update": frontDesk,
	"billing.delete": admin,
}

// allowed reports whether role may perform op. Unknown operations are
// denied.
func allowed(op string, role model.Role) bool {
	roles, ok := policy[op]
	return ok && hasRole(roles, role)
}

func hasRole(roles []model.Role, role model.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
