package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldicp/aldicp/pkg/models"
)

func testDef() *models.SchemaDefinition {
	return &models.SchemaDefinition{
		TableName:        "memory_documents",
		FingerprintField: "path",
		Fields: []models.Field{
			{Name: "id", Type: models.FieldTypeUUID, PrimaryKey: true, Required: true, Generated: true},
			{Name: "path", Type: models.FieldTypeString, Required: true},
			{Name: "title", Type: models.FieldTypeString, Required: false, Nullable: true},
			{Name: "token_count", Type: models.FieldTypeInteger, Required: false, Default: 0},
		},
	}
}

func TestValidateAndFill_GeneratesPrimaryKey(t *testing.T) {
	def := testDef()
	out, err := validateAndFill(def, map[string]any{"path": "./watched/doc.txt"})
	require.NoError(t, err)
	assert.NotEmpty(t, out["id"])
	assert.Equal(t, "./watched/doc.txt", out["path"])
	assert.Equal(t, int64(0), out["token_count"])
}

func TestValidateAndFill_MissingRequiredField(t *testing.T) {
	def := testDef()
	_, err := validateAndFill(def, map[string]any{})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestValidateAndFill_TypeMismatch(t *testing.T) {
	def := testDef()
	_, err := validateAndFill(def, map[string]any{"path": 42})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestCoerce_IntegerFromJSONFloat(t *testing.T) {
	v, err := coerce(models.FieldTypeInteger, float64(7))
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)
}

func TestCoerce_Nullable(t *testing.T) {
	v, err := coerce(models.FieldTypeString, nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}
