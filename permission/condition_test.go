package permission

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonwraymond/cmdops/identity"
)

func TestCondition_Validate(t *testing.T) {
	tests := []struct {
		name      string
		condition Condition
		wantErr   error
	}{
		{"valid", Condition{Field: FieldRole, Operator: OpEquals, Value: "admin"}, nil},
		{"unknown field", Condition{Field: "moon_phase", Operator: OpEquals, Value: "full"}, ErrUnknownField},
		{"unknown operator", Condition{Field: FieldRole, Operator: "roughly", Value: "admin"}, ErrUnknownOperator},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.condition.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCondition_Compare(t *testing.T) {
	tests := []struct {
		name      string
		condition Condition
		metadata  map[string]string
		want      bool
	}{
		{"equals", Condition{Field: FieldProjectType, Operator: OpEquals, Value: "go"}, map[string]string{"project_type": "go"}, true},
		{"equals mismatch", Condition{Field: FieldProjectType, Operator: OpEquals, Value: "go"}, map[string]string{"project_type": "rust"}, false},
		{"not equals", Condition{Field: FieldProjectType, Operator: OpNotEquals, Value: "go"}, map[string]string{"project_type": "rust"}, true},
		{"contains", Condition{Field: FieldCommandType, Operator: OpContains, Value: "write"}, map[string]string{"command_type": "file-write"}, true},
		{"not contains", Condition{Field: FieldCommandType, Operator: OpNotContains, Value: "write"}, map[string]string{"command_type": "file-read"}, true},
		{"numeric greater than", Condition{Field: FieldFileSize, Operator: OpGreaterThan, Value: "100"}, map[string]string{"file_size": "2048"}, true},
		{"numeric less than", Condition{Field: FieldFileSize, Operator: OpLessThan, Value: "100"}, map[string]string{"file_size": "2048"}, false},
		{"glob matches", Condition{Field: FieldTimeOfDay, Operator: OpMatches, Value: "09:*"}, map[string]string{"time_of_day": "09:30"}, true},
		{"glob not matches", Condition{Field: FieldTimeOfDay, Operator: OpNotMatches, Value: "09:*"}, map[string]string{"time_of_day": "17:30"}, true},
		{"missing metadata", Condition{Field: FieldProjectType, Operator: OpEquals, Value: "go"}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Request{Metadata: tt.metadata}
			if got := tt.condition.Evaluate(req); got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCondition_NumericOrdering(t *testing.T) {
	// "2048" > "100" numerically but not lexically; the ordering operators
	// must compare as numbers when both sides parse.
	c := Condition{Field: FieldFileSize, Operator: OpGreaterThan, Value: "100"}
	req := &Request{Metadata: map[string]string{"file_size": "2048"}}
	if !c.Evaluate(req) {
		t.Error("2048 should compare greater than 100")
	}
}

func TestCondition_Roles(t *testing.T) {
	admin := &identity.Identity{Principal: "a", Roles: []string{"admin", "dev"}}
	viewer := &identity.Identity{Principal: "v", Roles: []string{"viewer"}}
	nobody := &identity.Identity{Principal: "n"}

	equalsAdmin := Condition{Field: FieldRole, Operator: OpEquals, Value: "admin"}
	if !equalsAdmin.Evaluate(&Request{Identity: admin}) {
		t.Error("any-role semantics: admin holds the role")
	}
	if equalsAdmin.Evaluate(&Request{Identity: viewer}) {
		t.Error("viewer does not hold the admin role")
	}
	if equalsAdmin.Evaluate(&Request{Identity: nil}) {
		t.Error("nil identity never satisfies a role condition")
	}

	notAdmin := Condition{Field: FieldRole, Operator: OpNotEquals, Value: "admin"}
	if notAdmin.Evaluate(&Request{Identity: admin}) {
		t.Error("all-role semantics: admin holds the excluded role")
	}
	if !notAdmin.Evaluate(&Request{Identity: viewer}) {
		t.Error("viewer holds no excluded role")
	}
	if notAdmin.Evaluate(&Request{Identity: nobody}) {
		t.Error("empty role list never satisfies a negated role condition")
	}
}

func TestCondition_FileFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	if err := os.WriteFile(path, make([]byte, 500), 0o600); err != nil {
		t.Fatal(err)
	}

	ext := Condition{Field: FieldFileExtension, Operator: OpEquals, Value: ".pdf"}
	if !ext.Evaluate(&Request{Resource: path}) {
		t.Error("extension should be extracted from the resource path")
	}

	size := Condition{Field: FieldFileSize, Operator: OpLessThan, Value: "1000"}
	if !size.Evaluate(&Request{Resource: path}) {
		t.Error("file size should be read via stat")
	}

	missing := Condition{Field: FieldFileSize, Operator: OpLessThan, Value: "1000"}
	if missing.Evaluate(&Request{Resource: filepath.Join(dir, "absent")}) {
		t.Error("unstattable resource should evaluate to false")
	}
}

func TestCondition_MetadataOverridesLookup(t *testing.T) {
	// Metadata wins over the live extension lookup.
	c := Condition{Field: FieldFileExtension, Operator: OpEquals, Value: ".go"}
	req := &Request{
		Resource: "/tmp/file.txt",
		Metadata: map[string]string{"file_extension": ".go"},
	}
	if !c.Evaluate(req) {
		t.Error("metadata value should take precedence")
	}
}
