package tools

import (
	"context"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/server"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/workflow"
)

// SecauditArgs is the security audit tool's input.
type SecauditArgs struct {
	ThreatLevel            string   `json:"threat_level,omitempty" jsonschema:"description=Assumed threat model.,enum=low,enum=medium,enum=high,enum=critical"`
	SecurityScope          string   `json:"security_scope,omitempty" jsonschema:"description=The application context being audited: internal\\, external-facing\\, regulated industry\\, tech stack\\, etc."`
	ComplianceRequirements []string `json:"compliance_requirements,omitempty" jsonschema:"description=Specific compliance frameworks to check against (e.g. PCI DSS, HIPAA, SOC2, GDPR)."`
	AuditFocus             string   `json:"audit_focus,omitempty" jsonschema:"description=Primary security focus area for this audit.,enum=owasp,enum=compliance,enum=infrastructure,enum=dependencies,enum=comprehensive"`
	SeverityFilter         string   `json:"severity_filter,omitempty" jsonschema:"description=Minimum severity level to report.,enum=critical,enum=high,enum=medium,enum=low,enum=all"`
	WorkflowArgs
}

var secauditStatusMap = map[string]string{
	"investigation_in_progress":         "pause_for_security_audit",
	"skipped_due_to_certain_confidence": "certain_confidence_security_audit_complete",
	"calling_expert_analysis":           "security_audit_complete",
}

// RegisterSecaudit installs the security audit tool.
func RegisterSecaudit(s *server.Server, deps Deps) error {
	spec := workflow.Spec{
		ToolName:          "secaudit",
		Category:          models.ExtendedReasoning,
		ExpertGate:        workflow.ExpertGate{SkipOnCertainConfidence: true},
		ExpertInstruction: buildSystemPrompt(secauditExpertInstruction, deps.Locale),
		PausedStatus:      "pause_for_security_audit",
		CompleteStatusKey: "complete_security_audit",
		RequiredActionsFor: func(f *workflow.Findings, step workflow.Step) []string {
			if !step.NextStepRequired {
				return nil
			}
			return []string{
				"Check input validation and trust boundaries for every entry point found so far.",
				"Rate each finding's exploitability before submitting the next step.",
			}
		},
	}
	return server.Register(s, "secaudit", "Multi-step security audit surfacing exploitable findings with severity ratings.",
		func(ctx context.Context, args SecauditArgs) (server.Envelope, error) {
			if err := args.validatePaths(); err != nil {
				return toolError(err)
			}
			res, err := deps.Engine.Step(ctx, spec, args.toStep())
			if err != nil {
				return toolError(err)
			}
			env := workflowEnvelope(res, secauditStatusMap)
			if args.ThreatLevel != "" {
				setMeta(&env, "threat_level", args.ThreatLevel)
			}
			if args.SecurityScope != "" {
				setMeta(&env, "security_scope", args.SecurityScope)
			}
			if len(args.ComplianceRequirements) > 0 {
				setMeta(&env, "compliance_requirements", args.ComplianceRequirements)
			}
			if args.AuditFocus != "" {
				setMeta(&env, "audit_focus", args.AuditFocus)
			}
			if args.SeverityFilter != "" {
				setMeta(&env, "severity_filter", args.SeverityFilter)
			}
			return env, nil
		})
}
