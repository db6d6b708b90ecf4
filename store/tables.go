package store

// Relational table names owned by the legacy terms schema.
const (
	TableTermsOfUse                 = "terms_of_use"
	TableTermsOfUseType             = "terms_of_use_type_lu"
	TableTermsOfUseAgreeabilityType = "terms_of_use_agreeability_type_lu"
	TableTermsOfUseDependency       = "terms_of_use_dependency"
	TableDocusignTemplateXref       = "terms_of_use_docusign_template_xref"
	TableProjectRoleTermsXref       = "project_role_terms_of_use_xref"
	TableUserTermsXref              = "user_terms_of_use_xref"
	TableUserTermsBanXref           = "user_terms_of_use_ban_xref"
	TableResourceRole               = "resource_role_lu"
	TableDocusignEnvelope           = "docusign_envelope"
)
