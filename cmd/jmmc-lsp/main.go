package main

import (
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
	"github.com/xyproto/env/v2"
	"jmmc/internal/compiler"
	"jmmc/internal/lsp"
	"jmmc/internal/regalloc"
)

const lsName = "jmmc"

var handler protocol.Handler

func main() {
	commonlog.Configure(env.Int("JMMC_VERBOSE", 1), nil)
	log := commonlog.GetLogger("jmmc.lsp")

	config := compiler.Config{
		Optimize:           env.Bool("JMMC_OPTIMIZE"),
		RegisterAllocation: env.Int("JMMC_REGISTER_ALLOCATION", regalloc.Disabled),
	}
	jmmHandler := lsp.NewJmmHandler(config)

	handler = protocol.Handler{
		Initialize:                     jmmHandler.Initialize,
		Initialized:                    jmmHandler.Initialized,
		Shutdown:                       jmmHandler.Shutdown,
		SetTrace:                       jmmHandler.SetTrace,
		TextDocumentDidOpen:            jmmHandler.TextDocumentDidOpen,
		TextDocumentDidClose:           jmmHandler.TextDocumentDidClose,
		TextDocumentDidChange:          jmmHandler.TextDocumentDidChange,
		TextDocumentCompletion:         jmmHandler.TextDocumentCompletion,
		TextDocumentSemanticTokensFull: jmmHandler.TextDocumentSemanticTokensFull,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Info("starting jmmc language server")
	if err := s.RunStdio(); err != nil {
		log.Errorf("language server stopped: %s", err)
		os.Exit(1)
	}
}
