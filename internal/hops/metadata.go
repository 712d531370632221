package hops

import (
	"encoding/json"

	"github.com/specialistvlad/hopsgo/internal/component"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// ParamInfo describes one input or output to Hops.
type ParamInfo struct {
	Name        string          `json:"Name"`
	Nickname    string          `json:"Nickname"`
	Description string          `json:"Description"`
	ParamType   string          `json:"ParamType"`
	ResultType  string          `json:"ResultType"`
	AtLeast     int             `json:"AtLeast"`
	AtMost      int             `json:"AtMost"`
	Default     json.RawMessage `json:"Default,omitempty"`
}

// ComponentInfo is the metadata document served for GET /{route}.
type ComponentInfo struct {
	Description string      `json:"Description"`
	Inputs      []ParamInfo `json:"Inputs"`
	Outputs     []ParamInfo `json:"Outputs"`
	URI         string      `json:"Uri"`
	Name        string      `json:"Name"`
	Nickname    string      `json:"Nickname"`
	Category    string      `json:"Category"`
	Subcategory string      `json:"Subcategory"`
}

// Describe builds the metadata document for d.
func Describe(d *component.Descriptor) ComponentInfo {
	return ComponentInfo{
		Description: d.Description,
		Inputs:      paramInfos(d.Inputs),
		Outputs:     paramInfos(d.Outputs),
		URI:         d.Route,
		Name:        d.Name,
		Nickname:    d.Nickname,
		Category:    d.Category,
		Subcategory: d.Subcategory,
	}
}

func paramInfos(params []component.Param) []ParamInfo {
	out := make([]ParamInfo, 0, len(params))
	for _, p := range params {
		info := ParamInfo{
			Name:        p.Name,
			Nickname:    p.Nickname,
			Description: p.Description,
			ParamType:   p.Type.ParamType(),
			ResultType:  p.Type.ResultType(),
			AtLeast:     1,
			AtMost:      1,
		}
		if info.Nickname == "" {
			info.Nickname = p.Name
		}
		if p.Default != nil {
			// Defaults are validated at registration, so this cannot fail for
			// a registered descriptor.
			if b, err := ctyjson.Marshal(*p.Default, p.Default.Type()); err == nil {
				info.Default = b
			}
		}
		out = append(out, info)
	}
	return out
}
