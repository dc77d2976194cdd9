package jobs

import "github.com/labstack/echo/v4"

type Handlers interface {
	CompressImage() echo.HandlerFunc
	CompressVideo() echo.HandlerFunc
	CompressAudio() echo.HandlerFunc
	GetJobStatus() echo.HandlerFunc
	DeleteJob() echo.HandlerFunc
	ListJobs() echo.HandlerFunc
	ProcessJob() echo.HandlerFunc
}
