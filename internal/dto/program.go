package dto

// ProgramDocument is the on-disk shape of a program file.
// It uses "mapstructure" tags to match the YAML keys.
type ProgramDocument struct {
	Name       string              `json:"name" mapstructure:"name"`
	Version    string              `json:"version" mapstructure:"version"`
	Input      map[string]string   `json:"input" mapstructure:"input"`
	Statements []StatementDocument `json:"statements" mapstructure:"statements"`
}

// StatementDocument is one statement. Exactly one of Assign, Reply or If is set.
type StatementDocument struct {
	Assign string `json:"assign,omitempty" mapstructure:"assign"`
	Value  any    `json:"value,omitempty" mapstructure:"value"`

	Reply any `json:"reply,omitempty" mapstructure:"reply"`

	If   any                 `json:"if,omitempty" mapstructure:"if"`
	Then []StatementDocument `json:"then,omitempty" mapstructure:"then"`
	Else []StatementDocument `json:"else,omitempty" mapstructure:"else"`
}
