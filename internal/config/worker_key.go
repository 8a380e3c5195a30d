package config

type WorkerKeyStruct struct {
	SyncProgressQueue string
}

var WorkerKey = &WorkerKeyStruct{
	SyncProgressQueue: "sync_progress_queue",
}
