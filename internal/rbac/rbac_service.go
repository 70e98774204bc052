package rbac

import "github.com/casbin/casbin/v2"

const (
	RoleAdmin  = "ADMIN"
	RoleDoctor = "DOCTOR"
	RoleNurse  = "NURSE"
	RoleStaff  = "STAFF"
)

const (
	ResourceAttendance      = "attendance"
	ResourceAttendanceAdmin = "attendance_admin"
	ResourceRequest         = "request"
	ResourceRequestPool     = "request_pool"
	ResourceCredit          = "credit"
	ResourceWorker          = "worker"
)

const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionDelete = "delete"
	ActionClaim  = "claim"
	ActionManage = "manage"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Enforce(role, resource, action string) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
}

func NewService(enforcer *casbin.Enforcer) Service {
	return &service{enforcer: enforcer}
}

func (s *service) Enforce(role, resource, action string) (bool, error) {
	return s.enforcer.Enforce(role, resource, action)
}

func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleDoctor, RoleNurse, RoleStaff:
		return true
	default:
		return false
	}
}
