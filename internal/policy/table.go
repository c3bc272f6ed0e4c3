package policy

// Permission strings follow the "resource:action" form. "resource:*" grants
// every action on a resource, "*:*" grants everything.
const (
	PermissionWildcard = "*:*"

	PermProjectCreate = "project:create"
	PermProjectRead   = "project:read"
	PermProjectUpdate = "project:update"
	PermProjectDelete = "project:delete"
	PermProjectList   = "project:list"

	PermTaskCreate       = "task:create"
	PermTaskRead         = "task:read"
	PermTaskUpdate       = "task:update"
	PermTaskUpdateStatus = "task:update_status"
	PermTaskDelete       = "task:delete"
	PermTaskAssign       = "task:assign"
	PermTaskList         = "task:list"

	PermMemberAdd        = "member:add"
	PermMemberRemove     = "member:remove"
	PermMemberList       = "member:list"
	PermMemberUpdateRole = "member:update_role"

	PermInviteCreate = "invite:create"
	PermInviteCancel = "invite:cancel"
	PermInviteList   = "invite:list"

	PermCommentCreate    = "comment:create"
	PermCommentRead      = "comment:read"
	PermCommentUpdateOwn = "comment:update_own"
	PermCommentDelete    = "comment:delete"
	PermCommentDeleteOwn = "comment:delete_own"
	PermCommentList      = "comment:list"

	PermNotificationRead     = "notification:read"
	PermNotificationMarkRead = "notification:mark_read"
	PermNotificationDelete   = "notification:delete"
	PermNotificationList     = "notification:list"

	PermAuditRead = "audit:read"
	PermAuditList = "audit:list"
)

// Table is the compiled permission policy: role grants plus the per-resource
// role eligibility matrix. It is built once at process start and never
// mutated afterwards.
type Table struct {
	rolePerms map[Role][]string
	matrix    map[ResourceType]map[string][]Role
}

// DefaultTable returns the fixed policy shipped with the application.
func DefaultTable() *Table {
	return &Table{
		rolePerms: map[Role][]string{
			RoleSuperAdmin: {PermissionWildcard},
			RoleOwner: {
				PermProjectCreate, PermProjectRead, PermProjectUpdate, PermProjectDelete, PermProjectList,
				PermTaskCreate, PermTaskRead, PermTaskUpdate, PermTaskDelete, PermTaskAssign, PermTaskList,
				PermMemberAdd, PermMemberRemove, PermMemberList, PermMemberUpdateRole,
				PermInviteCreate, PermInviteCancel, PermInviteList,
				PermCommentCreate, PermCommentRead, PermCommentUpdateOwn, PermCommentDelete, PermCommentList,
				PermNotificationRead, PermNotificationMarkRead, PermNotificationDelete,
				PermAuditRead, PermAuditList,
			},
			RoleEmployee: {
				PermTaskRead, PermTaskUpdateStatus, PermTaskList,
				PermCommentCreate, PermCommentRead, PermCommentUpdateOwn, PermCommentDeleteOwn, PermCommentList,
				PermNotificationRead, PermNotificationMarkRead, PermNotificationDelete, PermNotificationList,
			},
		},
		matrix: map[ResourceType]map[string][]Role{
			ResourceProject: {
				"create": {RoleSuperAdmin, RoleOwner},
				"read":   {RoleSuperAdmin, RoleOwner, RoleEmployee},
				"update": {RoleSuperAdmin, RoleOwner},
				"delete": {RoleSuperAdmin},
				"list":   {RoleSuperAdmin, RoleOwner},
			},
			ResourceTask: {
				"create": {RoleSuperAdmin, RoleOwner},
				"read":   {RoleSuperAdmin, RoleOwner, RoleEmployee},
				"update": {RoleSuperAdmin, RoleOwner, RoleEmployee},
				"delete": {RoleSuperAdmin, RoleOwner},
				"assign": {RoleSuperAdmin, RoleOwner},
				"list":   {RoleSuperAdmin, RoleOwner, RoleEmployee},
			},
			ResourceComment: {
				"create": {RoleSuperAdmin, RoleOwner, RoleEmployee},
				"read":   {RoleSuperAdmin, RoleOwner, RoleEmployee},
				"update": {RoleSuperAdmin, RoleOwner},
				"delete": {RoleSuperAdmin, RoleOwner},
				"list":   {RoleSuperAdmin, RoleOwner, RoleEmployee},
			},
			ResourceMember: {
				"add":         {RoleSuperAdmin, RoleOwner},
				"remove":      {RoleSuperAdmin, RoleOwner},
				"list":        {RoleSuperAdmin, RoleOwner, RoleEmployee},
				"update_role": {RoleSuperAdmin, RoleOwner},
			},
			ResourceInvite: {
				"create": {RoleSuperAdmin, RoleOwner},
				"cancel": {RoleSuperAdmin, RoleOwner},
				"list":   {RoleSuperAdmin, RoleOwner},
				"accept": {RoleSuperAdmin, RoleOwner, RoleEmployee},
			},
			ResourceNotification: {
				"read":      {RoleSuperAdmin, RoleOwner, RoleEmployee},
				"mark_read": {RoleSuperAdmin, RoleOwner, RoleEmployee},
				"delete":    {RoleSuperAdmin, RoleOwner, RoleEmployee},
				"list":      {RoleSuperAdmin, RoleOwner, RoleEmployee},
			},
			ResourceAudit: {
				"read": {RoleSuperAdmin, RoleOwner},
				"list": {RoleSuperAdmin, RoleOwner},
			},
		},
	}
}

// RolePermissions returns the permission strings held directly by a role.
// Unknown roles yield an empty set, never an error.
func (t *Table) RolePermissions(role Role) []string {
	perms, ok := t.rolePerms[role]
	if !ok {
		return nil
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// ResourceRoleMatrix returns the roles eligible to attempt an action on a
// resource type. Unknown resource or action yields an empty set; callers
// must treat that as deny.
func (t *Table) ResourceRoleMatrix(resource ResourceType, action string) []Role {
	actions, ok := t.matrix[resource]
	if !ok {
		return nil
	}
	roles, ok := actions[action]
	if !ok {
		return nil
	}
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}
