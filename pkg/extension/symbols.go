package extension

import "reflect"

// Symbols exposes this package to interpreted extensions, which import it as
// "github.com/lerenn/release-manager/pkg/extension".
var Symbols = map[string]map[string]reflect.Value{
	"github.com/lerenn/release-manager/pkg/extension/extension": {
		"Handle":   reflect.ValueOf((*Handle)(nil)),
		"Strategy": reflect.ValueOf((*StrategyInfo)(nil)),
	},
}
