package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"course:view",
		"content:view",
		"attempt:create",
		"attempt:submit",
		"assignment:submit",
	},
	"teacher": {
		"course:view",
		"course:create",
		"content:view",
		"content:create",
		"quiz:create",
		"assignment:create",
		"enrollment:create",
		"students:list",
		"schedule:view",
		"schedule:write",
	},
}
