// Package task manages background job queuing, processing, and lifecycle.
// It provides mechanisms for asynchronous execution of long-running
// operations like fitting scheduler weights to a review history, ensuring
// they don't block interactive review handling.
package task
