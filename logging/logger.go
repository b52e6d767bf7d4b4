// Copyright 2024 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

// Package logging wraps zap for the engine's structured logs and renders
// the human-facing interval-mining banner hardhat-style CLIs print after
// every automatically mined block.
package logging

import (
	"bytes"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"go.uber.org/zap"

	libcommon "github.com/erigontech/erigon-lib/common"
)

// Logger wraps a *zap.SugaredLogger plus the console-template machinery for
// the interval-mine banner. PrintLogs gates whether the banner is rendered
// at all, matching hardhat's `logging.enabled` config knob.
type Logger struct {
	zap       *zap.SugaredLogger
	printLogs bool
	blockTmpl *template.Template
	emptyTmpl *template.Template
}

func New(zapLogger *zap.Logger, printLogs bool) (*Logger, error) {
	funcs := sprig.TxtFuncMap()
	blockTmpl, err := template.New("block").Funcs(funcs).Parse(
		"Mined block #{{.Number}}{{if .Empty}} (empty){{end}}{{if .BaseFee}} with base fee {{.BaseFee}}{{end}}")
	if err != nil {
		return nil, err
	}
	emptyTmpl, err := template.New("empty").Funcs(funcs).Parse("")
	if err != nil {
		return nil, err
	}
	return &Logger{zap: zapLogger.Sugar(), printLogs: printLogs, blockTmpl: blockTmpl, emptyTmpl: emptyTmpl}, nil
}

func (l *Logger) Info(msg string, keysAndValues ...interface{})  { l.zap.Infow(msg, keysAndValues...) }
func (l *Logger) Warn(msg string, keysAndValues ...interface{})  { l.zap.Warnw(msg, keysAndValues...) }
func (l *Logger) Error(msg string, keysAndValues ...interface{}) { l.zap.Errorw(msg, keysAndValues...) }
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) { l.zap.Debugw(msg, keysAndValues...) }

// PrintLogs reports whether the console banner should be rendered; callers
// that only do structured zap logging don't need to check this.
func (l *Logger) PrintLogs() bool { return l.printLogs }

type blockBanner struct {
	Number  uint64
	Empty   bool
	BaseFee string
}

// PrintIntervalMinedBlockNumber renders the one-line banner an auto-mining
// dev-node prints after each interval-mined block.
func (l *Logger) PrintIntervalMinedBlockNumber(number uint64, isEmpty bool, baseFee *libcommon.U256) string {
	b := blockBanner{Number: number, Empty: isEmpty}
	if baseFee != nil {
		b.BaseFee = baseFee.String()
	}
	var buf bytes.Buffer
	if err := l.blockTmpl.Execute(&buf, b); err != nil {
		return ""
	}
	return buf.String()
}

// PrintEmptyLine renders the blank-line separator the console prints
// between mined-block banners.
func (l *Logger) PrintEmptyLine() string { return "" }
