package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.ListPendingFilesActivity)
	w.RegisterActivity(a.SubmitBatchActivity)
	w.RegisterActivity(a.RetrieveBatchActivity)
	w.RegisterActivity(a.SaveBatchOutputActivity)
	w.RegisterActivity(a.RecordBatchJobActivity)
}
