package metadata

/** Definition for jobs. Returns the result handed to OnComplete. */
type JobStart func(params interface{}) (interface{}, error)

/** Definition for completion of a job. */
type JobOnComplete func(result interface{})

/** Definition for failure of a job. */
type JobOnFailure func(err error)

/**
 * @brief Describes a job to be run on a worker goroutine.
 */
type JobTask struct {
	/** @brief A function invoked when the job starts. Required. */
	OnStart JobStart
	/** @brief Invoked on the worker with the result when the job succeeds. Optional. */
	OnComplete JobOnComplete
	/** @brief Invoked on the worker when the job fails. Optional. */
	OnFailure JobOnFailure
	/** @brief Data to be passed to OnStart. */
	InputParams interface{}
}
