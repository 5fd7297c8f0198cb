package handlers

import (
	workerRepo "sewa/database/repository/worker"

	"github.com/go-redis/redis/v8"
)

// HandlerBundle groups the endpoint handlers and what the route guards need.
type HandlerBundle struct {
	WorkerRepo workerRepo.WorkerRepository
	AuthCache  *redis.Client
	AdminToken string

	Worker *WorkerHandler
	Admin  *AdminHandler
}
