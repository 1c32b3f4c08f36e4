package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var JmmLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// Comments
		{"Comment", `//[^\n]*`, nil},
		{"BlockComment", `/\*([^*]|\*+[^*/])*\*+/`, nil},

		// Keywords must win over identifiers
		{"Keyword", `\b(class|extends|import|public|static|return|if|else|while|new|this|true|false|int|boolean|void)\b`, nil},
		{"Ident", `[a-zA-Z_$][a-zA-Z0-9_$]*`, nil},

		// Integer literals
		{"Integer", `[0-9]+`, nil},

		// Operators ("..." before ".")
		{"Operator", `(&&|==|!=|<=|>=|\.\.\.|[-+*/<>=!])`, nil},

		// Punctuation
		{"Punctuation", `[{}[\]();,.]`, nil},

		// Whitespace
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
