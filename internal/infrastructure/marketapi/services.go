package marketapi

import (
	"context"

	"campuschat/internal/domain/entity"
	"campuschat/internal/domain/repository"
	"campuschat/internal/domain/service"
)

var (
	_ repository.BlockRepository   = (*Client)(nil)
	_ repository.ReportRepository  = (*Client)(nil)
	_ repository.ProfileRepository = (*Client)(nil)
	_ service.NotificationService  = (*Client)(nil)
)

type blockedUserDTO struct {
	ID           string `json:"_id"`
	Name         string `json:"name"`
	ProfileImage string `json:"profileImage"`
}

type blockedListResponse struct {
	BlockedUsers []blockedUserDTO `json:"blockedUsers"`
}

func (c *Client) ListBlocked(ctx context.Context, token string) ([]entity.BlockedUser, error) {
	var resp blockedListResponse
	if err := c.Get(ctx, "/report/blocked-list", token, &resp); err != nil {
		return nil, err
	}

	users := make([]entity.BlockedUser, 0, len(resp.BlockedUsers))
	for _, u := range resp.BlockedUsers {
		if u.ID == "" {
			continue
		}
		users = append(users, entity.BlockedUser{UserID: u.ID, Name: u.Name, Avatar: u.ProfileImage})
	}
	return users, nil
}

func (c *Client) Block(ctx context.Context, token, userID string) error {
	return c.Post(ctx, "/report/block/"+escape(userID), token, nil, nil)
}

func (c *Client) Unblock(ctx context.Context, token, userID string) error {
	return c.Post(ctx, "/report/unblock/"+escape(userID), token, nil, nil)
}

type makeReportRequest struct {
	ReportType  string `json:"reportType"`
	TargetID    string `json:"targetId"`
	Reason      string `json:"reason"`
	Description string `json:"description,omitempty"`
}

func (c *Client) Create(ctx context.Context, token string, report *entity.Report) error {
	return c.Post(ctx, "/report/Make", token, makeReportRequest{
		ReportType:  string(report.TargetType),
		TargetID:    report.TargetID,
		Reason:      report.ReasonLabel,
		Description: report.Details,
	}, nil)
}

type profileResponse struct {
	User entity.Profile `json:"user"`
}

func (c *Client) GetMyProfile(ctx context.Context, token string) (*entity.Profile, error) {
	var resp profileResponse
	if err := c.Get(ctx, "/profile/myProfile", token, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) NotifyMessage(ctx context.Context, token string, n service.MessageNotification) error {
	return c.Post(ctx, "/notifications/message", token, n, nil)
}
