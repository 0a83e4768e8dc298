package classifier

import (
	"testing"

	"github.com/karsidev/karsi/types"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name        string
		serviceType string
		want        types.Category
	}{
		{"ec2 instance", "EC2-Instance", types.CategoryVM},
		{"azure vm", "Azure Virtual Machine", types.CategoryVM},
		{"bare compute", "compute engine", types.CategoryVM},
		{"mysql", "Managed MySQL", types.CategoryDB},
		{"rds", "rds cluster", types.CategoryDB},
		{"cosmos", "Cosmos Account", types.CategoryDB},
		{"blob", "blob container", types.CategoryStorage},
		{"ebs volume", "ebs volume", types.CategoryStorage},
		{"empty string", "", types.CategoryStorage},
		{"garbage", "!@#$%", types.CategoryStorage},
		// "sql server" matches both keyword sets; VM is tested first.
		{"sql server tie-break", "SQL Server", types.CategoryVM},
		{"dynamodb is db not vm", "dynamodb table", types.CategoryDB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Categorize(tt.serviceType); got != tt.want {
				t.Errorf("Categorize(%q) = %v, want %v", tt.serviceType, got, tt.want)
			}
		})
	}
}

func TestCategorizeIsCaseInsensitive(t *testing.T) {
	if Categorize("POSTGRES") != types.CategoryDB {
		t.Error("uppercase DB keyword should still classify as db")
	}
	if Categorize("VirtualMachine") != types.CategoryVM {
		t.Error("mixed-case VM keyword should still classify as vm")
	}
}
