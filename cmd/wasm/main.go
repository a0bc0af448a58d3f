//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"jassjr/internal/adapter/analyzer"
	"jassjr/internal/adapter/memstore"
)

var (
	stemmer   *analyzer.PorterStemmer
	tokenizer *analyzer.Tokenizer
)

func init() {
	stemmer = analyzer.NewPorterStemmer()
	tokenizer = analyzer.NewTokenizer(analyzer.DefaultStopList(), stemmer, 0)
}

func main() {
	c := make(chan struct{})

	js.Global().Set("jassjrIndex", js.FuncOf(indexContent))
	js.Global().Set("jassjrStem", js.FuncOf(stemWords))
	js.Global().Set("jassjrTokens", js.FuncOf(tokens))

	<-c
}

// indexContent builds an in-memory index of one collection and returns it
// as JSON.
func indexContent(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: jassjrIndex(collection)")
	}

	builder := memstore.NewBuilder(tokenizer, memstore.DefaultOptions())
	for tok := range analyzer.Tokens(args[0].String()) {
		builder.Consume(tok)
	}
	builder.EndOfStream()

	postings := make(map[string][][2]uint32)
	for _, term := range builder.Terms() {
		list := builder.Postings(term)
		pairs := make([][2]uint32, len(list))
		for i, p := range list {
			pairs[i] = [2]uint32{p.Doc, p.TF}
		}
		postings[term] = pairs
	}

	return makeResult(map[string]interface{}{
		"docIds":   builder.DocIDs(),
		"lengths":  builder.Lengths(),
		"terms":    builder.Terms(),
		"postings": postings,
		"stats":    builder.Stats(),
	})
}

func stemWords(this js.Value, args []js.Value) interface{} {
	stems := make([]string, len(args))
	for i, a := range args {
		stems[i] = stemmer.StemWord(a.String())
	}
	return makeResult(map[string]interface{}{
		"stems": stems,
	})
}

func tokens(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: jassjrTokens(text)")
	}
	return makeResult(map[string]interface{}{
		"tokens": tokenizer.Tokenize(args[0].String()),
	})
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
