package store

// SQL query constants organized by entity.
// All SQL lives here; PostgresStore methods reference these constants.

// Account queries.
const (
	queryCreatePlaceholderAccount = `
		INSERT INTO seller_accounts (
			id, owner_user_id, label, external_account_id,
			user_selected_scopes, status, created_at, updated_at
		) VALUES (
			@id, @owner_user_id, @label, @external_account_id,
			@user_selected_scopes, 'pending', now(), now()
		)
		RETURNING ` + accountColumns

	queryGetAccount = baseAccountsSelect + `
		WHERE id = $1`

	// queryUpdateAccount applies a partial update in one statement. NULL
	// parameters keep the current column value.
	queryUpdateAccount = `
		UPDATE seller_accounts SET
			label                = COALESCE(@label, label),
			external_account_id  = COALESCE(@external_account_id, external_account_id),
			external_username    = COALESCE(@external_username, external_username),
			access_token         = COALESCE(@access_token, access_token),
			refresh_token        = COALESCE(@refresh_token, refresh_token),
			expires_at           = COALESCE(@expires_at, expires_at),
			granted_scopes       = COALESCE(@granted_scopes, granted_scopes),
			user_selected_scopes = COALESCE(@user_selected_scopes, user_selected_scopes),
			status               = COALESCE(@status, status),
			last_used_at         = COALESCE(@last_used_at, last_used_at),
			updated_at           = now()
		WHERE id = @id
		RETURNING ` + accountColumns

	queryDeleteAccount = `DELETE FROM seller_accounts WHERE id = $1`

	queryListExpiringAccounts = baseAccountsSelect + `
		WHERE status = 'active'
			AND refresh_token <> ''
			AND expires_at < $1
		ORDER BY expires_at ASC
		LIMIT $2`
)

// Auth event queries.
const (
	queryInsertAuthEvent = `
		INSERT INTO auth_events (account_id, event_type, detail)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	queryListAuthEvents = `
		SELECT id, account_id, event_type, detail, created_at
		FROM auth_events
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
)
