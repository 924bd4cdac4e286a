package model

// Role is a staffing position label that can be requested on a job
type Role string

const (
	RoleA1            Role = "A1"
	RoleA2            Role = "A2"
	RoleV1            Role = "V1"
	RoleV2            Role = "V2"
	RoleLD            Role = "LD"
	RoleL1            Role = "L1"
	RoleL2            Role = "L2"
	RoleStagehand     Role = "Stagehand"
	RoleRigger        Role = "Rigger"
	RoleAudioEngineer Role = "Audio Engineer"
	RoleVideoEngineer Role = "Video Engineer"
	RoleLightingTech  Role = "Lighting Tech"
	RoleCameraOp      Role = "Camera Op"
	RoleUtility       Role = "Utility"
)

var allRoles = []Role{
	RoleA1, RoleA2, RoleV1, RoleV2, RoleLD, RoleL1, RoleL2,
	RoleStagehand, RoleRigger, RoleAudioEngineer, RoleVideoEngineer, RoleLightingTech,
	RoleCameraOp, RoleUtility,
}

// AllRoles returns the closed set of requestable roles in their canonical order
func AllRoles() []Role {
	roles := make([]Role, len(allRoles))
	copy(roles, allRoles)
	return roles
}

func (r Role) IsValid() bool {
	for _, role := range allRoles {
		if r == role {
			return true
		}
	}
	return false
}
