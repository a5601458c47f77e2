package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/dmitrijs2005/issuetracker/internal/server/auth"
	"github.com/dmitrijs2005/issuetracker/internal/server/models"
	"github.com/gin-gonic/gin"
)

// bindJSON decodes the request body into dst. Enum and date errors keep
// their validation message.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		switch {
		case errors.Is(err, io.EOF):
			return common.NewError(common.ErrorBadRequest, "Request body is required")
		case errors.Is(err, common.ErrorValidation):
			return err
		default:
			return common.NewError(common.ErrorBadRequest, "Invalid request body")
		}
	}
	return nil
}

func (s *Server) setSessionCookie(c *gin.Context, session *auth.Session) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(common.SessionCookieName, session.Token, int(s.config.SessionTokenValidityDuration.Seconds()),
		"/", "", s.config.CookieSecure, true)
}

func (s *Server) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(common.SessionCookieName, "", -1, "/", "", s.config.CookieSecure, true)
}

func publicUser(u *models.User) gin.H {
	return gin.H{"_id": u.ID, "name": u.Name, "email": u.Email}
}

// --- users ---

func (s *Server) register(c *gin.Context) {
	var in models.RegisterInput
	if err := bindJSON(c, &in); err != nil {
		s.abortWithError(c, err)
		return
	}

	session, user, err := s.svc.Users.Register(c.Request.Context(), in)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "user registered", "user_id", user.ID)
	s.setSessionCookie(c, session)
	c.JSON(http.StatusCreated, publicUser(user))
}

func (s *Server) login(c *gin.Context) {
	var in models.LoginInput
	if err := bindJSON(c, &in); err != nil {
		s.abortWithError(c, err)
		return
	}

	session, user, err := s.svc.Users.Login(c.Request.Context(), in)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	s.setSessionCookie(c, session)
	c.JSON(http.StatusOK, publicUser(user))
}

func (s *Server) logout(c *gin.Context) {
	if err := s.svc.Users.Logout(c.Request.Context(), c.GetString(tokenKey)); err != nil {
		s.abortWithError(c, err)
		return
	}
	s.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (s *Server) profile(c *gin.Context) {
	user := currentUser(c)
	c.JSON(http.StatusOK, user)
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.svc.Users.ListUsers(c.Request.Context(), currentUser(c))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// --- projects ---

func (s *Server) listProjects(c *gin.Context) {
	projects, err := s.svc.Projects.List(c.Request.Context(), currentUser(c))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (s *Server) createProject(c *gin.Context) {
	var in models.ProjectInput
	if err := bindJSON(c, &in); err != nil {
		s.abortWithError(c, err)
		return
	}
	p, err := s.svc.Projects.Create(c.Request.Context(), currentUser(c), in)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) getProject(c *gin.Context) {
	p, err := s.svc.Projects.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) updateProject(c *gin.Context) {
	var in models.ProjectInput
	if err := bindJSON(c, &in); err != nil {
		s.abortWithError(c, err)
		return
	}
	p, err := s.svc.Projects.Update(c.Request.Context(), currentUser(c), c.Param("id"), in)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) deleteProject(c *gin.Context) {
	if err := s.svc.Projects.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

func (s *Server) addMember(c *gin.Context) {
	var in models.AddMemberInput
	if err := bindJSON(c, &in); err != nil {
		s.abortWithError(c, err)
		return
	}
	p, err := s.svc.Projects.AddMember(c.Request.Context(), currentUser(c), c.Param("id"), in)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// --- sprints ---

func (s *Server) listSprints(c *gin.Context) {
	sprints, err := s.svc.Sprints.List(c.Request.Context(), currentUser(c), c.Query("projectId"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sprints)
}

func (s *Server) createSprint(c *gin.Context) {
	var in models.SprintInput
	if err := bindJSON(c, &in); err != nil {
		s.abortWithError(c, err)
		return
	}
	sp, err := s.svc.Sprints.Create(c.Request.Context(), currentUser(c), in)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sp)
}

func (s *Server) getSprint(c *gin.Context) {
	sp, err := s.svc.Sprints.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sp)
}

func (s *Server) updateSprint(c *gin.Context) {
	var in models.SprintInput
	if err := bindJSON(c, &in); err != nil {
		s.abortWithError(c, err)
		return
	}
	sp, err := s.svc.Sprints.Update(c.Request.Context(), currentUser(c), c.Param("id"), in)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sp)
}

func (s *Server) deleteSprint(c *gin.Context) {
	if err := s.svc.Sprints.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sprint deleted successfully"})
}

// --- issues ---

func issueFilterFromQuery(c *gin.Context) (models.IssueFilter, error) {
	sprintID, sprintSet := c.GetQuery("sprintId")
	filter := models.IssueFilter{
		ProjectID: c.Query("projectId"),
		Sprint:    models.ParseSprintFilter(sprintID, sprintSet),
		Assignee:  c.Query("assignee"),
	}
	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseIssueStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}
	return filter, nil
}

func (s *Server) listIssues(c *gin.Context) {
	filter, err := issueFilterFromQuery(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	issues, err := s.svc.Issues.List(c.Request.Context(), currentUser(c), filter)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, issues)
}

func (s *Server) createIssue(c *gin.Context) {
	var in models.IssueInput
	if err := bindJSON(c, &in); err != nil {
		s.abortWithError(c, err)
		return
	}
	issue, err := s.svc.Issues.Create(c.Request.Context(), currentUser(c), in)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, issue)
}

func (s *Server) getIssue(c *gin.Context) {
	issue, err := s.svc.Issues.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

func (s *Server) updateIssue(c *gin.Context) {
	var in models.IssueInput
	if err := bindJSON(c, &in); err != nil {
		s.abortWithError(c, err)
		return
	}
	issue, err := s.svc.Issues.Update(c.Request.Context(), currentUser(c), c.Param("id"), in)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

func (s *Server) patchIssueStatus(c *gin.Context) {
	var in models.StatusInput
	if err := bindJSON(c, &in); err != nil {
		s.abortWithError(c, err)
		return
	}
	issue, err := s.svc.Issues.PatchStatus(c.Request.Context(), currentUser(c), c.Param("id"), in.Status)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

func (s *Server) deleteIssue(c *gin.Context) {
	if err := s.svc.Issues.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Issue deleted successfully"})
}

func (s *Server) listAttachments(c *gin.Context) {
	list, err := s.svc.Attachments.List(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) createAttachment(c *gin.Context) {
	var in models.AttachmentInput
	if err := bindJSON(c, &in); err != nil {
		s.abortWithError(c, err)
		return
	}
	up, err := s.svc.Attachments.RequestUpload(c.Request.Context(), currentUser(c), c.Param("id"), in)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, up)
}

// --- analytics ---

func (s *Server) projectAnalytics(c *gin.Context) {
	st, err := s.svc.Analytics.ForProject(c.Request.Context(), currentUser(c), c.Param("projectId"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
