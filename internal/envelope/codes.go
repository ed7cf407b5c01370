// Package envelope defines the closed wire-contract vocabulary every Eye
// response is built from: status codes, Eye tags, tool names, branches, and
// the well-known data keys an Eye may populate in a response.
package envelope

// StatusCode is the closed set of outcome codes an Eye response may carry.
type StatusCode string

const (
	OKOverseerGuide         StatusCode = "OK_OVERSEER_GUIDE"
	OKNoClarificationNeeded StatusCode = "OK_NO_CLARIFICATION_NEEDED"
	OKPromptReady           StatusCode = "OK_PROMPT_READY"
	OKIntentConfirmed       StatusCode = "OK_INTENT_CONFIRMED"
	OKSchemaEmitted         StatusCode = "OK_SCHEMA_EMITTED"
	OKPlanApproved          StatusCode = "OK_PLAN_APPROVED"
	OKScaffoldApproved      StatusCode = "OK_SCAFFOLD_APPROVED"
	OKImplApproved          StatusCode = "OK_IMPL_APPROVED"
	OKTestsApproved         StatusCode = "OK_TESTS_APPROVED"
	OKDocsApproved          StatusCode = "OK_DOCS_APPROVED"
	OKTextValidated         StatusCode = "OK_TEXT_VALIDATED"
	OKConsistent            StatusCode = "OK_CONSISTENT"
	OKAllApproved           StatusCode = "OK_ALL_APPROVED"

	ENeedsClarification  StatusCode = "E_NEEDS_CLARIFICATION"
	EIntentUnconfirmed   StatusCode = "E_INTENT_UNCONFIRMED"
	EPlanIncomplete      StatusCode = "E_PLAN_INCOMPLETE"
	EScaffoldIssues      StatusCode = "E_SCAFFOLD_ISSUES"
	EImplIssues          StatusCode = "E_IMPL_ISSUES"
	ETestsInsufficient   StatusCode = "E_TESTS_INSUFFICIENT"
	EDocsMissing         StatusCode = "E_DOCS_MISSING"
	ECitationsMissing    StatusCode = "E_CITATIONS_MISSING"
	EUnsupportedClaims   StatusCode = "E_UNSUPPORTED_CLAIMS"
	EContradictionFound  StatusCode = "E_CONTRADICTION_DETECTED"
	EReasoningMissing    StatusCode = "E_REASONING_MISSING"
	EPhasesIncomplete    StatusCode = "E_PHASES_INCOMPLETE"
	EBadPayloadSchema    StatusCode = "E_BAD_PAYLOAD_SCHEMA"
	EInternalError       StatusCode = "E_INTERNAL_ERROR"
	EBudgetExceeded      StatusCode = "E_BUDGET_EXCEEDED"
	EPromptGuard         StatusCode = "E_PROMPT_GUARD"
)

// IsValid reports whether code belongs to the closed status-code set.
func (c StatusCode) IsValid() bool {
	switch c {
	case OKOverseerGuide, OKNoClarificationNeeded, OKPromptReady, OKIntentConfirmed,
		OKSchemaEmitted, OKPlanApproved, OKScaffoldApproved, OKImplApproved,
		OKTestsApproved, OKDocsApproved, OKTextValidated, OKConsistent, OKAllApproved,
		ENeedsClarification, EIntentUnconfirmed, EPlanIncomplete, EScaffoldIssues,
		EImplIssues, ETestsInsufficient, EDocsMissing, ECitationsMissing,
		EUnsupportedClaims, EContradictionFound, EReasoningMissing, EPhasesIncomplete,
		EBadPayloadSchema, EInternalError, EBudgetExceeded, EPromptGuard:
		return true
	default:
		return false
	}
}

// IsOK reports whether the code represents a passing gate.
func (c StatusCode) IsOK() bool {
	return len(c) >= 3 && c[:3] == "OK_"
}

// EyeTag is the bracketed identifier every Eye prefixes its response with.
type EyeTag string

const (
	TagOverseer                 EyeTag = "[EYE/OVERSEER]"
	TagSharingan                EyeTag = "[EYE/SHARINGAN]"
	TagPromptHelper             EyeTag = "[EYE/PROMPT_HELPER]"
	TagJogan                    EyeTag = "[EYE/JOGAN]"
	TagRinneganPlanRequirements EyeTag = "[EYE/RINNEGAN/PLAN_REQUIREMENTS]"
	TagRinneganPlanReview       EyeTag = "[EYE/RINNEGAN/PLAN_REVIEW]"
	TagRinneganFinal            EyeTag = "[EYE/RINNEGAN/FINAL]"
	TagMangekyoScaffold         EyeTag = "[EYE/MANGEKYO/REVIEW_SCAFFOLD]"
	TagMangekyoImpl             EyeTag = "[EYE/MANGEKYO/REVIEW_IMPL]"
	TagMangekyoTests            EyeTag = "[EYE/MANGEKYO/REVIEW_TESTS]"
	TagMangekyoDocs             EyeTag = "[EYE/MANGEKYO/REVIEW_DOCS]"
	TagTenseigan                EyeTag = "[EYE/TENSEIGAN]"
	TagByakugan                 EyeTag = "[EYE/BYAKUGAN]"
)

// ToolName is the closed set of callable Eye tool paths.
type ToolName string

const (
	ToolOverseerNavigator      ToolName = "overseer/navigator"
	ToolSharinganClarify       ToolName = "sharingan/clarify"
	ToolPromptHelperRewrite    ToolName = "helper/rewrite_prompt"
	ToolJoganConfirmIntent     ToolName = "jogan/confirm_intent"
	ToolRinneganPlanReqs       ToolName = "rinnegan/plan_requirements"
	ToolRinneganPlanReview     ToolName = "rinnegan/plan_review"
	ToolRinneganFinalApproval  ToolName = "rinnegan/final_approval"
	ToolMangekyoReviewScaffold ToolName = "mangekyo/review_scaffold"
	ToolMangekyoReviewImpl     ToolName = "mangekyo/review_impl"
	ToolMangekyoReviewTests    ToolName = "mangekyo/review_tests"
	ToolMangekyoReviewDocs     ToolName = "mangekyo/review_docs"
	ToolTenseiganValidateClaims ToolName = "tenseigan/validate_claims"
	ToolByakuganConsistency    ToolName = "byakugan/consistency_check"
)

// IsValid reports whether name belongs to the closed tool set.
func (n ToolName) IsValid() bool {
	_, ok := ToolEyeTag[n]
	return ok
}

// Branch is which validation track a session follows after classification.
type Branch string

const (
	BranchShared Branch = "shared"
	BranchCode   Branch = "code"
	BranchText   Branch = "text"
)

// ToolBranch maps every tool to the branch it belongs to.
var ToolBranch = map[ToolName]Branch{
	ToolOverseerNavigator:       BranchShared,
	ToolSharinganClarify:        BranchShared,
	ToolPromptHelperRewrite:     BranchShared,
	ToolJoganConfirmIntent:      BranchShared,
	ToolRinneganPlanReqs:        BranchCode,
	ToolRinneganPlanReview:      BranchCode,
	ToolRinneganFinalApproval:   BranchCode,
	ToolMangekyoReviewScaffold:  BranchCode,
	ToolMangekyoReviewImpl:      BranchCode,
	ToolMangekyoReviewTests:     BranchCode,
	ToolMangekyoReviewDocs:      BranchCode,
	ToolTenseiganValidateClaims: BranchText,
	ToolByakuganConsistency:     BranchText,
}

// ToolEyeTag maps every tool to the Eye tag that answers it.
var ToolEyeTag = map[ToolName]EyeTag{
	ToolOverseerNavigator:       TagOverseer,
	ToolSharinganClarify:        TagSharingan,
	ToolPromptHelperRewrite:     TagPromptHelper,
	ToolJoganConfirmIntent:      TagJogan,
	ToolRinneganPlanReqs:        TagRinneganPlanRequirements,
	ToolRinneganPlanReview:      TagRinneganPlanReview,
	ToolRinneganFinalApproval:   TagRinneganFinal,
	ToolMangekyoReviewScaffold:  TagMangekyoScaffold,
	ToolMangekyoReviewImpl:      TagMangekyoImpl,
	ToolMangekyoReviewTests:     TagMangekyoTests,
	ToolMangekyoReviewDocs:      TagMangekyoDocs,
	ToolTenseiganValidateClaims: TagTenseigan,
	ToolByakuganConsistency:     TagByakugan,
}

// ToolVersion is the version string stamped into the data (as
// DataToolVersion) of every Eye response the gateway returns and journals,
// enabling clients to detect a behavior change across deployments.
var ToolVersion = map[ToolName]string{
	ToolSharinganClarify:        "sharingan/clarify@1.0.0",
	ToolPromptHelperRewrite:     "helper/rewrite_prompt@1.0.0",
	ToolJoganConfirmIntent:      "jogan/confirm_intent@1.0.0",
	ToolRinneganPlanReqs:        "rinnegan/plan_requirements@1.0.0",
	ToolRinneganPlanReview:      "rinnegan/plan_review@1.0.0",
	ToolRinneganFinalApproval:   "rinnegan/final_approval@1.0.0",
	ToolMangekyoReviewScaffold:  "mangekyo/review_scaffold@1.0.0",
	ToolMangekyoReviewImpl:      "mangekyo/review_impl@1.0.0",
	ToolMangekyoReviewTests:     "mangekyo/review_tests@1.0.0",
	ToolMangekyoReviewDocs:      "mangekyo/review_docs@1.0.0",
	ToolTenseiganValidateClaims: "tenseigan/validate_claims@1.0.0",
	ToolByakuganConsistency:     "byakugan/consistency_check@1.0.0",
}

// DataKey is the closed set of keys an Eye may populate in an envelope's
// Data map.
type DataKey string

const (
	DataScore                DataKey = "score"
	DataAmbiguous             DataKey = "ambiguous"
	DataQuestionsMD           DataKey = "questions_md"
	DataPolicyMD              DataKey = "policy_md"
	DataX                     DataKey = "x"
	DataIsCodeRelated         DataKey = "is_code_related"
	DataReasoningMD           DataKey = "reasoning_md"
	DataPromptMD              DataKey = "prompt_md"
	DataInstructionsMD        DataKey = "instructions_md"
	DataIntentConfirmed       DataKey = "intent_confirmed"
	DataConfirmationMD        DataKey = "confirmation_md"
	DataNextActionMD          DataKey = "next_action_md"
	DataExpectedSchemaMD      DataKey = "expected_schema_md"
	DataExampleMD             DataKey = "example_md"
	DataAcceptanceCriteriaMD  DataKey = "acceptance_criteria_md"
	DataApproved              DataKey = "approved"
	DataChecklistMD           DataKey = "checklist_md"
	DataIssuesMD              DataKey = "issues_md"
	DataFixInstructionsMD     DataKey = "fix_instructions_md"
	DataCoverageGate          DataKey = "coverage_gate"
	DataClaimsMD              DataKey = "claims_md"
	DataCitationsMD           DataKey = "citations_md"
	DataConsistent            DataKey = "consistent"
	DataAnalysisMD            DataKey = "analysis_md"
	DataSummaryMD             DataKey = "summary_md"
	DataSchemaMD              DataKey = "schema_md"
	DataContractJSON          DataKey = "contract_json"
	DataBudgetTokens          DataKey = "budget_tokens"
	DataToolVersion           DataKey = "tool_version"
	DataConsistencyScore      DataKey = "consistency_score"
	DataMangekyoStrictness    DataKey = "mangekyo_strictness"
)

// NextAction is the closed set of guidance strings an envelope's
// NextAction field may carry, steering the host agent to its next call.
type NextAction string

const (
	NextBeginWithSharingan   NextAction = "Start with sharingan/clarify to evaluate ambiguity."
	NextAskClarifications    NextAction = "Ask these questions to the user and resubmit answers to Prompt Helper."
	NextSendToPromptHelper   NextAction = "Send answers (or N/A) to Prompt Helper."
	NextFollowCodeBranch     NextAction = "Proceed to helper/rewrite_prompt, then follow the Code branch (Jōgan -> Rinnegan plan -> Mangekyō phases)."
	NextFollowTextBranch     NextAction = "Proceed to helper/rewrite_prompt, then follow the Text branch (Jōgan -> Tenseigan -> Byakugan)."
	NextSendToJogan          NextAction = "Send to Jōgan for confirmation."
	NextCallPlanRequirements NextAction = "Call Rinnegan/plan_requirements and produce plan per schema."
	NextRerunJogan           NextAction = "Collect user confirmation/edits, then re-run Jōgan."
	NextSubmitPlanReview     NextAction = "Host agent must submit its plan to rinnegan/plan_review."
	NextResubmitPlan         NextAction = "Revise plan and resubmit to plan_review."
	NextGoToMangekyoScaffold NextAction = "Proceed to Mangekyō scaffold review."
	NextResubmitScaffold     NextAction = "Address issues and resubmit to mangekyo/review_scaffold."
	NextResubmitImpl         NextAction = "Resolve issues and resubmit to mangekyo/review_impl."
	NextResubmitTests        NextAction = "Improve tests and resubmit to mangekyo/review_tests."
	NextResubmitDocs         NextAction = "Update docs and resubmit to mangekyo/review_docs."
	NextGoToDocs             NextAction = "Proceed to mangekyo/review_docs."
	NextGoToFinal            NextAction = "Proceed to Rinnegan/final_approval when other gates are complete."
	NextGoToImpl             NextAction = "Continue with mangekyo/review_impl."
	NextGoToTests            NextAction = "Proceed to mangekyo/review_tests."
	NextAddCitations         NextAction = "Attach sources for each claim and resubmit to tenseigan/validate_claims."
	NextFixContradictions    NextAction = "Resolve contradictions and resubmit."
	NextCompletePhases       NextAction = "Complete missing phases and resubmit."
	NextReturnDeliverable    NextAction = "Return the final deliverable to the user (host action)."
	NextGoToByakugan         NextAction = "Proceed to byakugan/consistency_check."
	NextRewriteRequest       NextAction = "Rewrite the request to remove unsafe or meta-instructions, then resubmit."
	NextResendValidPayload   NextAction = "Re-send the request with a valid payload."
)
