package utils

import (
	"context"

	"github.com/gin-gonic/gin"
)

// RequestContext travels with a webhook request through the handler,
// the background forwarder goroutine and the spans they emit.
type RequestContext struct {
	AppSource string
	RequestID string
}

type requestContextKeyType struct{}

var requestContextKey = requestContextKeyType{}

func WithRequestContext(ctx context.Context, requestContext *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey, requestContext)
}

func WithRequestContextFromGin(c *gin.Context, appSource string) context.Context {
	requestContext := &RequestContext{
		AppSource: appSource,
		RequestID: c.GetString("RequestId"),
	}
	return WithRequestContext(c.Request.Context(), requestContext)
}

func GetRequestContext(ctx context.Context) *RequestContext {
	requestContext, ok := ctx.Value(requestContextKey).(*RequestContext)
	if !ok {
		return new(RequestContext)
	}
	return requestContext
}

func GetRequestIDFromContext(ctx context.Context) string {
	return GetRequestContext(ctx).RequestID
}

func GetAppSourceFromContext(ctx context.Context) string {
	return GetRequestContext(ctx).AppSource
}
