package main

import (
	"context"
	"os"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"rrs-edge/internal/config"
	"rrs-edge/internal/edge"
	"rrs-edge/internal/rewrite"
)

// newHandler resolves the profile once at cold start; every invocation
// then shares the same immutable rewriter.
func newHandler(profile string) (func(context.Context, edge.Event) (edge.Request, error), error) {
	if profile == "" {
		profile = "responsive"
	}
	cfg, err := config.File{}.Profile(profile)
	if err != nil {
		return nil, err
	}
	h := edge.Handler{Rewriter: rewrite.New(cfg)}
	return h.Handle, nil
}

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	handle, err := newHandler(os.Getenv("RRS_PROFILE"))
	if err != nil {
		log.Fatal("select profile", zap.Error(err))
	}
	awslambda.Start(handle)
}
