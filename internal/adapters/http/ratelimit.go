package httpadapter

import "golang.org/x/time/rate"

// UploadLimiter bounds how fast receipts may enter the parsing pipeline, and
// with it the load put on the extraction API.
type UploadLimiter struct {
	limiter *rate.Limiter
}

func NewUploadLimiter(perMinute, burst int) *UploadLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = 1
	}
	return &UploadLimiter{
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst),
	}
}

func (l *UploadLimiter) Allow() bool {
	return l.limiter.Allow()
}
