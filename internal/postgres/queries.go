package postgres

const (
	queryAppendMessage = `
		INSERT INTO messages (id, sender_id, receiver_id, room_id, text)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, sender_id, receiver_id, room_id, text, read, created_at`

	queryHistory = `
		SELECT id, sender_id, receiver_id, room_id, text, read, created_at
		FROM messages
		WHERE room_id = $1
		ORDER BY created_at ASC, id ASC`

	queryHistoryPage = `
		SELECT id, sender_id, receiver_id, room_id, text, read, created_at
		FROM messages
		WHERE room_id = $1
		  AND (
		    $2::timestamptz IS NULL
		    OR created_at > $2
		    OR (created_at = $2 AND id > $3)
		  )
		ORDER BY created_at ASC, id ASC
		LIMIT $4`

	queryMarkMessagesRead = `
		UPDATE messages SET read = TRUE
		WHERE room_id = $1 AND receiver_id = $2 AND NOT read`

	queryUnreadCount = `
		SELECT COUNT(*) FROM messages
		WHERE receiver_id = $1 AND NOT read`

	// Один оператор: параллельные отправки в одну комнату не теряют участников.
	// Отсутствующие участники дописываются в конец в исходном порядке.
	queryUpsertConversation = `
		INSERT INTO conversations (id, room_id, participants, last_message)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (room_id) DO UPDATE SET
		    participants = conversations.participants || ARRAY(
		        SELECT t.p
		        FROM unnest(EXCLUDED.participants) WITH ORDINALITY AS t(p, ord)
		        WHERE t.p <> ALL(conversations.participants)
		        ORDER BY t.ord
		    ),
		    last_message = EXCLUDED.last_message,
		    updated_at   = clock_timestamp()
		RETURNING id, room_id, participants, last_message, created_at, updated_at`

	queryConversationsForUser = `
		SELECT id, room_id, participants, last_message, created_at, updated_at
		FROM conversations
		WHERE $1 = ANY(participants)
		ORDER BY updated_at DESC, id DESC`

	queryCreateNotification = `
		INSERT INTO notifications (id, receiver_id, type, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, receiver_id, type, message, read, created_at`

	// LIMIT NULL — без ограничения
	queryRecentNotifications = `
		SELECT id, receiver_id, type, message, read, created_at
		FROM notifications
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	queryNotificationsForReceiver = `
		SELECT id, receiver_id, type, message, read, created_at
		FROM notifications
		WHERE receiver_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	queryMarkNotificationRead = `
		UPDATE notifications SET read = TRUE
		WHERE id = $1
		RETURNING id, receiver_id, type, message, read, created_at`

	queryFindUser     = `SELECT id, name FROM users WHERE id = $1`
	queryFindEmployee = `SELECT id, name FROM employees WHERE id = $1`
)
