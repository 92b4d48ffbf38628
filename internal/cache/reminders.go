package cache

import (
	"context"
	"fmt"
	"time"
)

const reminderPrefix = "reminder:trial:"

// Пользователь находится в окне напоминания d не дольше суток.
const reminderMarkTTL = 48 * time.Hour

func reminderKey(userID string, daysRemaining int) string {
	return fmt.Sprintf("%s%s:%d", reminderPrefix, userID, daysRemaining)
}

// MarkReminderSent атомарно помечает напоминание как отправленное.
// Возвращает false, если метка уже стояла.
func (c *Cache) MarkReminderSent(ctx context.Context, userID string, daysRemaining int) (bool, error) {
	const op = "cache.MarkReminderSent"
	ok, err := c.Db.SetNX(ctx, reminderKey(userID, daysRemaining), 1, reminderMarkTTL).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}

// ClearReminderSent снимает метку, чтобы напоминание ушло на следующем запуске.
func (c *Cache) ClearReminderSent(ctx context.Context, userID string, daysRemaining int) error {
	const op = "cache.ClearReminderSent"
	if err := c.Db.Del(ctx, reminderKey(userID, daysRemaining)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
