package eyes

import (
	"testing"

	"github.com/eyeward-labs/overseer/internal/envelope"
	"github.com/stretchr/testify/assert"
)

func TestPlanRequirements_EmitsSchema(t *testing.T) {
	env := PlanRequirements()
	assert.True(t, env.OK)
	assert.Equal(t, envelope.OKSchemaEmitted, env.Code)
	assert.Equal(t, envelope.NextSubmitPlanReview, env.Next)
	assert.NotEmpty(t, env.Data[string(envelope.DataExpectedSchemaMD)])
	assert.NotEmpty(t, env.Data[string(envelope.DataExampleMD)])
}
