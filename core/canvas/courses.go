package canvas

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// Term is an enrollment term.
type Term struct {
	ID      int64      `json:"id"`
	Name    string     `json:"name"`
	StartAt *time.Time `json:"start_at"`
	EndAt   *time.Time `json:"end_at"`
}

// Course is a Canvas course. Term and SyllabusBody are only present when
// requested with include[].
type Course struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	CourseCode    string `json:"course_code"`
	WorkflowState string `json:"workflow_state"`
	Term          *Term  `json:"term,omitempty"`
	SyllabusBody  string `json:"syllabus_body,omitempty"`
}

// TeacherCourses lists the available courses in which the token's user is
// enrolled as a teacher, with their terms.
func (c *Client) TeacherCourses(ctx context.Context) ([]Course, error) {
	endpoint := fmt.Sprintf("/api/v1/courses?enrollment_type=teacher&state[]=available&include[]=term&per_page=%d", perPage)
	courses, err := getAll[Course](ctx, c, endpoint)
	if err != nil {
		return nil, err
	}

	available := courses[:0]
	for _, course := range courses {
		if course.WorkflowState == "available" {
			available = append(available, course)
		}
	}
	return available, nil
}

// Course fetches one course including its syllabus and term.
func (c *Client) Course(ctx context.Context, courseID string) (*Course, error) {
	endpoint := fmt.Sprintf("/api/v1/courses/%s?include[]=syllabus_body&include[]=term", url.PathEscape(courseID))
	var course Course
	if err := c.get(ctx, endpoint, &course); err != nil {
		return nil, err
	}
	return &course, nil
}
