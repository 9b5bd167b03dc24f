package format

import (
	"bytes"
	"io"
	"testing"

	"github.com/spf13/cobra"
)

func TestOutputFormat_String(t *testing.T) {
	tests := []struct {
		name   string
		format OutputFormat
		want   string
	}{
		{"human", Human, "human"},
		{"json", JSON, "json"},
		{"yaml", YAML, "yaml"},
		{"unknown", OutputFormat(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format.String(); got != tt.want {
				t.Errorf("OutputFormat.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name      string
		formatStr string
		want      OutputFormat
		wantErr   bool
	}{
		{"human", "human", Human, false},
		{"h", "h", Human, false},
		{"plain", "plain", Human, false},
		{"p", "p", Human, false},
		{"empty defaults to human", "", Human, false},
		{"json", "json", JSON, false},
		{"j", "j", JSON, false},
		{"yaml", "yaml", YAML, false},
		{"y", "y", YAML, false},
		{"invalid", "invalid", Human, true},
		{"case sensitive", "JSON", Human, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.formatStr)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseFormat() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAddFormatFlag(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	AddFormatFlag(cmd)

	flag := cmd.Flags().Lookup("format")
	if flag == nil {
		t.Fatal("AddFormatFlag() did not add format flag")
	}
	if flag.DefValue != "human" {
		t.Errorf("AddFormatFlag() default = %v, want human", flag.DefValue)
	}
	if cmd.Flags().ShorthandLookup("f") == nil {
		t.Fatal("AddFormatFlag() did not add shorthand flag")
	}
}

func TestGetFormat(t *testing.T) {
	tests := []struct {
		flagValue string
		want      OutputFormat
		wantErr   bool
	}{
		{"human", Human, false},
		{"json", JSON, false},
		{"yaml", YAML, false},
		{"p", Human, false},
		{"invalid", Human, true},
	}

	for _, tt := range tests {
		t.Run(tt.flagValue, func(t *testing.T) {
			cmd := &cobra.Command{Use: "test"}
			AddFormatFlag(cmd)
			_ = cmd.Flags().Set("format", tt.flagValue)

			got, err := GetFormat(cmd)
			if (err != nil) != tt.wantErr {
				t.Errorf("GetFormat() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("GetFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

type renderable struct {
	Name string `json:"name" yaml:"name"`
}

func TestRender(t *testing.T) {
	v := renderable{Name: "vault-a"}
	human := func(w io.Writer, got any) error {
		_, err := w.Write([]byte("name: " + got.(renderable).Name))
		return err
	}

	var jsonBuf, yamlBuf, humanBuf bytes.Buffer
	if err := Render(&jsonBuf, JSON, v, human); err != nil {
		t.Fatalf("Render(JSON) error: %v", err)
	}
	if !bytes.Contains(jsonBuf.Bytes(), []byte(`"name"`)) {
		t.Errorf("Render(JSON) = %s, want it to contain name field", jsonBuf.String())
	}

	if err := Render(&yamlBuf, YAML, v, human); err != nil {
		t.Fatalf("Render(YAML) error: %v", err)
	}
	if !bytes.Contains(yamlBuf.Bytes(), []byte("name: vault-a")) {
		t.Errorf("Render(YAML) = %s, want it to contain name field", yamlBuf.String())
	}

	if err := Render(&humanBuf, Human, v, human); err != nil {
		t.Fatalf("Render(Human) error: %v", err)
	}
	if humanBuf.String() != "name: vault-a" {
		t.Errorf("Render(Human) = %s, want name: vault-a", humanBuf.String())
	}
}
