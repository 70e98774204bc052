package rbac

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

// Kebijakan statis: fasilitas tunggal, peran tetap.
var policies = [][]string{
	{RoleAdmin, ResourceAttendanceAdmin, ActionManage},
	{RoleAdmin, ResourceAttendanceAdmin, ActionRead},
	{RoleAdmin, ResourceWorker, ActionCreate},
	{RoleAdmin, ResourceWorker, ActionRead},

	{RoleDoctor, ResourceAttendance, ActionCreate},
	{RoleDoctor, ResourceAttendance, ActionRead},
	{RoleDoctor, ResourceRequest, ActionCreate},
	{RoleDoctor, ResourceRequest, ActionDelete},
	{RoleDoctor, ResourceRequest, ActionRead},

	{RoleNurse, ResourceAttendance, ActionCreate},
	{RoleNurse, ResourceAttendance, ActionRead},
	{RoleNurse, ResourceRequest, ActionRead},
	{RoleNurse, ResourceRequestPool, ActionRead},
	{RoleNurse, ResourceRequestPool, ActionClaim},
	{RoleNurse, ResourceCredit, ActionRead},

	{RoleStaff, ResourceAttendance, ActionCreate},
	{RoleStaff, ResourceAttendance, ActionRead},
}

func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	for _, p := range policies {
		if _, err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, err
		}
	}

	return e, nil
}
